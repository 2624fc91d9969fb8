// Package adapter provides the data store contract used by the query gateway.
//
// This package contains the public contract that all database adapters must implement,
// a database/sql base implementation, a lazily connecting wrapper and the adapter registry.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/aactmcp/pkg/core"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Query runs a statement and returns at most stmt.Limit rows in result order.
	// Connection failures are classified as core.KindDataUnavailable and
	// statement failures as core.KindQueryExecutionFailed.
	Query(ctx context.Context, stmt core.Statement) ([]core.Row, error)

	// Dialect returns the catalog dialect for this adapter.
	Dialect() *dialect.Dialect
}
