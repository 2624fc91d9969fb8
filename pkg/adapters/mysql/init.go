// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/aactmcp/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Dialect is the MySQL catalog dialect. MySQL has no default schema:
// the governed schema falls back to the configured database.
var Dialect = dialect.NewDialect("mysql").Build()

func init() {
	adapter.Register("mysql", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
