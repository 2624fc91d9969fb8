// Package sqlite provides a pure Go SQLite data store adapter (modernc.org/sqlite).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new SQLite adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger}}
}

// Dialect returns the sqlite catalog dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect opens the SQLite database file.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildSQLiteDSN(cfg)

	a.Logger.Debug("opening sqlite", slog.String("dsn", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	adapter.ConfigurePool(db, cfg)
	if isMemory(cfg) {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

func dbPath(cfg adapter.Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	if cfg.Database != "" {
		return cfg.Database
	}
	return ":memory:"
}

func isMemory(cfg adapter.Config) bool {
	return dbPath(cfg) == ":memory:"
}

// buildSQLiteDSN turns options into _pragma parameters, e.g. busy_timeout=5000
// becomes _pragma=busy_timeout(5000).
func buildSQLiteDSN(cfg adapter.Config) string {
	path := dbPath(cfg)
	if len(cfg.Options) == 0 {
		return path
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := url.Values{}
	for _, k := range keys {
		params.Add("_pragma", fmt.Sprintf("%s(%s)", k, cfg.Options[k]))
	}
	return "file:" + path + "?" + params.Encode()
}
