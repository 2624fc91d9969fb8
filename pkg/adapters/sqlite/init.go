// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/aactmcp/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Dialect is the SQLite catalog dialect. SQLite has no information_schema,
// so the catalog is read from sqlite_master and pragma_table_info.
var Dialect = dialect.NewDialect("sqlite").
	DefaultSchema("main").
	ListTables(listTables).
	DescribeTable(describeTable).
	ListColumns(listColumns).
	Build()

func init() {
	adapter.Register("sqlite", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

func master(schema string) string {
	return `"` + strings.ReplaceAll(schema, `"`, `""`) + `".sqlite_master`
}

func listTables(d *dialect.Dialect, schema, _ string) (string, []any, error) {
	return sq.Select("name AS " + dialect.ColTableName).
		From(master(schema)).
		Where(sq.Eq{"type": []string{"table", "view"}}).
		Where(sq.NotLike{"name": "sqlite_%"}).
		OrderBy("name").
		PlaceholderFormat(d.Placeholder).
		ToSql()
}

func describeTable(_ *dialect.Dialect, schema, table string) (string, []any, error) {
	return "SELECT name AS " + dialect.ColColumnName +
		", type AS " + dialect.ColDataType +
		", NULL AS " + dialect.ColMaxLength +
		" FROM pragma_table_info(?, ?) ORDER BY cid", []any{table, schema}, nil
}

func listColumns(d *dialect.Dialect, schema, _ string) (string, []any, error) {
	return sq.Select("m.name AS "+dialect.ColTableName, "p.name AS "+dialect.ColColumnName).
		From(master(schema)+" AS m").
		JoinClause("JOIN pragma_table_info(m.name, ?) AS p", schema).
		Where(sq.Eq{"m.type": "table"}).
		Where(sq.NotLike{"m.name": "sqlite_%"}).
		OrderBy("m.name", "p.cid").
		PlaceholderFormat(d.Placeholder).
		ToSql()
}
