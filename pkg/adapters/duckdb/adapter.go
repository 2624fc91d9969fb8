// Package duckdb provides a DuckDB data store adapter, useful for querying
// local extracts of the governed schema.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new DuckDB adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger}}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Dialect returns the duckdb catalog dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect opens the DuckDB database.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDuckDBDSN(cfg)

	a.Logger.Debug("opening duckdb", slog.String("dsn", dsn))

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	adapter.ConfigurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildDuckDBDSN returns the database path with options as DuckDB config parameters
// (access_mode, threads, memory_limit, ...).
func buildDuckDBDSN(cfg adapter.Config) string {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == ":memory:" {
		path = ""
	}
	if path != "" && !strings.HasPrefix(path, "md:") {
		path = filepath.Clean(path)
	}

	if len(cfg.Options) == 0 {
		return path
	}
	params := url.Values{}
	for k, v := range cfg.Options {
		params.Set(k, v)
	}
	return path + "?" + params.Encode()
}
