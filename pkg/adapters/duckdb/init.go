// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/aactmcp/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Dialect is the DuckDB catalog dialect. DuckDB implements information_schema.
var Dialect = dialect.NewDialect("duckdb").
	DefaultSchema("main").
	Build()

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
