package adapter

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net"

	"github.com/leapstack-labs/aactmcp/pkg/core"
)

// errNotConnected is returned by every operation before Connect succeeds.
var errNotConnected = core.Errorf(core.KindDataUnavailable, "database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Ping and Query implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger

	// IsConnErr lets a driver mark its own error types as connection failures.
	IsConnErr func(error) bool
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Ping verifies the database is reachable.
func (b *BaseSQLAdapter) Ping(ctx context.Context) error {
	if b.DB == nil {
		return errNotConnected
	}
	if err := b.DB.PingContext(ctx); err != nil {
		return core.Wrap(core.KindDataUnavailable, err, "failed to ping database")
	}
	return nil
}

// Query executes a statement and collects up to stmt.Limit rows.
//
// The statement runs under its own context, cancelled as soon as the limit
// is reached so the driver stops streaming the rest of the result set.
func (b *BaseSQLAdapter) Query(ctx context.Context, stmt core.Statement) ([]core.Row, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if stmt.ReadOnly {
		return b.queryReadOnly(ctx, cancel, stmt)
	}

	rows, err := b.DB.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, b.classify(err, "failed to execute query")
	}
	defer func() { _ = rows.Close() }()

	return b.collect(rows, stmt.Limit, cancel)
}

func (b *BaseSQLAdapter) queryReadOnly(ctx context.Context, cancel context.CancelFunc, stmt core.Statement) ([]core.Row, error) {
	tx, err := b.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, b.classify(err, "failed to begin read-only transaction")
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, b.classify(err, "failed to execute query")
	}
	defer func() { _ = rows.Close() }()

	return b.collect(rows, stmt.Limit, cancel)
}

// collect scans rows into core.Row values, stopping after limit rows when
// limit > 0. Reaching the limit calls stop before the rows are closed.
func (b *BaseSQLAdapter) collect(rows *sql.Rows, limit int, stop context.CancelFunc) ([]core.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, b.classify(err, "failed to read result columns")
	}

	out := make([]core.Row, 0)
	for (limit <= 0 || len(out) < limit) && rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, b.classify(err, "failed to scan row")
		}
		out = append(out, core.NewRow(cols, values))
	}

	if limit > 0 && len(out) >= limit {
		stop()
		return out, nil
	}
	if err := rows.Err(); err != nil {
		return nil, b.classify(err, "error iterating rows")
	}
	return out, nil
}

func (b *BaseSQLAdapter) classify(err error, msg string) error {
	if IsConnectionError(err) || (b.IsConnErr != nil && b.IsConnErr(err)) {
		return core.Wrap(core.KindDataUnavailable, err, msg)
	}
	return core.Wrap(core.KindQueryExecutionFailed, err, msg)
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ConfigurePool applies the pool limits from cfg to db.
func ConfigurePool(db *sql.DB, cfg core.AdapterConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// IsConnectionError reports whether err is a connection-level failure
// rather than a failure of the statement itself.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
