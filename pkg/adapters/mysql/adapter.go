// Package mysql provides a MySQL / MariaDB data store adapter.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new MySQL adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, IsConnErr: isConnErr}}
}

// Dialect returns the mysql catalog dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", buildMySQLDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}
	adapter.ConfigurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

func buildMySQLDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

func isConnErr(err error) bool {
	return errors.Is(err, mysql.ErrInvalidConn)
}
