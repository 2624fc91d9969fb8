// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/aactmcp/pkg/adapters/sqlserver"
package sqlserver

import (
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Dialect is the SQL Server catalog dialect (@p1 style parameters).
var Dialect = dialect.NewDialect("sqlserver").
	DefaultSchema("dbo").
	Placeholder(sq.AtP).
	Build()

func init() {
	adapter.Register("sqlserver", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
