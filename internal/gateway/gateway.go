// Package gateway validates read requests and forwards them to the data store.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/core"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Gateway enforces the read-only query policy over a data store
// restricted to one governed schema.
type Gateway struct {
	store    adapter.Adapter
	schema   string
	readOnly bool
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithReadOnlyTx runs accepted queries inside a read-only transaction.
func WithReadOnlyTx(enabled bool) Option {
	return func(g *Gateway) { g.readOnly = enabled }
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New returns a gateway over store limited to schema.
// An empty schema falls back to the store dialect's default.
func New(store adapter.Adapter, schema string, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		schema: store.Dialect().Schema(schema),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GovernedSchema picks the schema the gateway is restricted to: the
// configured one, else the dialect default, else the database name
// (MySQL treats databases as schemas).
func GovernedSchema(configured string, d *dialect.Dialect, database string) string {
	if s := d.Schema(configured); s != "" {
		return s
	}
	return database
}

// Schema returns the governed schema.
func (g *Gateway) Schema() string {
	return g.schema
}

// ListTables returns the tables of the governed schema in ascending name order.
func (g *Gateway) ListTables(ctx context.Context) ([]core.TableInfo, error) {
	query, args, err := g.store.Dialect().ListTablesSQL(g.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to build table listing: %w", err)
	}

	rows, err := g.store.Query(ctx, core.Statement{SQL: query, Args: args})
	if err != nil {
		return nil, classify(err)
	}

	seen := make(map[string]struct{}, len(rows))
	tables := make([]core.TableInfo, 0, len(rows))
	for _, row := range rows {
		name := row.String(dialect.ColTableName)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tables = append(tables, core.TableInfo{TableName: name})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableName < tables[j].TableName })

	g.logger.Debug("listed tables", slog.String("schema", g.schema), slog.Int("count", len(tables)))
	return tables, nil
}

// DescribeTable returns the columns of table in declared order.
// An unknown table yields an empty slice.
func (g *Gateway) DescribeTable(ctx context.Context, table string) ([]core.ColumnInfo, error) {
	if table == "" {
		return nil, core.Errorf(core.KindInvalidArgument, "table name is empty")
	}

	query, args, err := g.store.Dialect().DescribeTableSQL(g.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to build column query: %w", err)
	}

	rows, err := g.store.Query(ctx, core.Statement{SQL: query, Args: args})
	if err != nil {
		return nil, classify(err)
	}

	cols := make([]core.ColumnInfo, 0, len(rows))
	for _, row := range rows {
		maxLen, _ := row.Get(dialect.ColMaxLength)
		cols = append(cols, core.ColumnInfo{
			ColumnName:             row.String(dialect.ColColumnName),
			DataType:               row.String(dialect.ColDataType),
			CharacterMaximumLength: toInt64(maxLen),
		})
	}
	return cols, nil
}

// RunQuery validates query and executes it with a cap of rowLimit rows.
//
// Only statements whose trimmed, upper-cased text starts with SELECT are
// accepted. The check is lexical: a SELECT-prefixed statement carrying a
// data-modifying CTE passes it. Enable WithReadOnlyTx to have the
// database enforce read-only execution.
func (g *Gateway) RunQuery(ctx context.Context, query string, rowLimit int) (*core.QueryResult, error) {
	if query == "" {
		return nil, core.Errorf(core.KindInvalidArgument, "query is empty")
	}
	if rowLimit < 1 {
		return nil, core.Errorf(core.KindInvalidArgument, "max_rows must be at least 1, got %d", rowLimit)
	}
	if !IsSelect(query) {
		return nil, core.Errorf(core.KindRejectedQuery, "Only SELECT queries are allowed")
	}

	rows, err := g.store.Query(ctx, core.Statement{
		SQL:      query,
		Limit:    rowLimit,
		ReadOnly: g.readOnly,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(rows) > rowLimit {
		rows = rows[:rowLimit]
	}
	return core.NewQueryResult(rows, rowLimit), nil
}

// ColumnRef names one column of the governed schema.
type ColumnRef struct {
	Table  string
	Column string
}

// Columns returns every column of the governed schema ordered by table
// then declared position.
func (g *Gateway) Columns(ctx context.Context) ([]ColumnRef, error) {
	query, args, err := g.store.Dialect().ListColumnsSQL(g.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to build column listing: %w", err)
	}

	rows, err := g.store.Query(ctx, core.Statement{SQL: query, Args: args})
	if err != nil {
		return nil, classify(err)
	}

	refs := make([]ColumnRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, ColumnRef{
			Table:  row.String(dialect.ColTableName),
			Column: row.String(dialect.ColColumnName),
		})
	}
	return refs, nil
}

// IsSelect reports whether query passes the lexical SELECT guard.
func IsSelect(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}

// classify keeps connection failures as DataUnavailable and reports
// everything else as a statement failure.
func classify(err error) error {
	switch core.KindOf(err) {
	case core.KindDataUnavailable, core.KindQueryExecutionFailed:
		return err
	}
	return &core.Error{Kind: core.KindQueryExecutionFailed, Err: err}
}

// toInt64 converts a catalog length value to *int64. Non-numeric values yield nil.
func toInt64(v any) *int64 {
	var n int64
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int:
		n = int64(x)
	case int16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		n = int64(x)
	case float64:
		n = int64(x)
	case float32:
		n = int64(x)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}
