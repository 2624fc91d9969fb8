// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/aactmcp/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Dialect is the PostgreSQL catalog dialect.
var Dialect = dialect.NewDialect("postgres").
	DefaultSchema("public").
	Placeholder(sq.Dollar).
	Build()

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
