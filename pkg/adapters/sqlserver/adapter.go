// Package sqlserver provides a Microsoft SQL Server data store adapter.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	_ "github.com/denisenkom/go-mssqldb" // registers the "sqlserver" database/sql driver

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Adapter implements the adapter.Adapter interface for SQL Server.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new SQL Server adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger}}
}

// Dialect returns the sqlserver catalog dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect establishes a connection to SQL Server.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to sqlserver", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("sqlserver", buildSQLServerDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open sqlserver connection: %w", err)
	}
	adapter.ConfigurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlserver: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildSQLServerDSN builds a sqlserver:// URL; options become query parameters.
func buildSQLServerDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}

	query := url.Values{}
	if cfg.Database != "" {
		query.Set("database", cfg.Database)
	}
	for k, v := range cfg.Options {
		query.Set(k, v)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		RawQuery: query.Encode(),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}
