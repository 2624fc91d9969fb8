package core

// TableInfo describes one table of the governed schema.
type TableInfo struct {
	TableName string `json:"table_name"`
}

// ColumnInfo describes one column of a table, in declared position order.
type ColumnInfo struct {
	ColumnName             string `json:"column_name"`
	DataType               string `json:"data_type"`
	CharacterMaximumLength *int64 `json:"character_maximum_length"`
}

// QueryResult is the shaped result of a read query.
//
// Truncated reports that the row cap was reached (RowCount >= max rows).
// It does not guarantee that more rows exist: a result with exactly
// max rows is reported as truncated.
type QueryResult struct {
	Rows      []Row `json:"rows"`
	RowCount  int   `json:"row_count"`
	Truncated bool  `json:"truncated"`
}

// NewQueryResult shapes rows fetched under maxRows into a QueryResult.
func NewQueryResult(rows []Row, maxRows int) *QueryResult {
	if rows == nil {
		rows = []Row{}
	}
	return &QueryResult{
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: len(rows) >= maxRows,
	}
}

// InsightResponse is returned after a finding is appended to the memo.
type InsightResponse struct {
	Success       bool   `json:"success"`
	TotalInsights int    `json:"total_insights"`
	Message       string `json:"message"`
}
