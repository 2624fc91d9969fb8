package adapter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/aactmcp/pkg/core"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// Lazy wraps an adapter and connects it on first use.
//
// A failed connect is reported as core.KindDataUnavailable to the caller
// that triggered it; the next call tries to connect again.
type Lazy struct {
	inner  Adapter
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	connected bool
}

var _ Adapter = (*Lazy)(nil)

// NewLazy returns a lazily connecting wrapper around inner.
func NewLazy(inner Adapter, cfg Config, logger *slog.Logger) *Lazy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lazy{inner: inner, cfg: cfg, logger: logger}
}

func (l *Lazy) ensure(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected {
		return nil
	}
	if err := l.inner.Connect(ctx, l.cfg); err != nil {
		l.logger.Error("database connection failed", slog.String("type", l.cfg.Type), slog.Any("error", err))
		return core.Wrap(core.KindDataUnavailable, err, "database unavailable")
	}
	l.logger.Info("database connected", slog.String("type", l.cfg.Type), slog.String("database", l.cfg.Database))
	l.connected = true
	return nil
}

// Connect replaces the stored config and connects immediately.
func (l *Lazy) Connect(ctx context.Context, cfg Config) error {
	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return l.ensure(ctx)
}

// Close closes the inner adapter if it was connected.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return nil
	}
	l.connected = false
	return l.inner.Close()
}

// Ping connects if needed and pings the database.
func (l *Lazy) Ping(ctx context.Context) error {
	if err := l.ensure(ctx); err != nil {
		return err
	}
	return l.inner.Ping(ctx)
}

// Query connects if needed and runs the statement.
func (l *Lazy) Query(ctx context.Context, stmt core.Statement) ([]core.Row, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.inner.Query(ctx, stmt)
}

// Dialect returns the inner adapter's dialect.
func (l *Lazy) Dialect() *dialect.Dialect {
	return l.inner.Dialect()
}
