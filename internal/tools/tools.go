// Package tools implements the operations and resources offered to an
// analysis agent: table listing, table description, read queries and the
// insight memo.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/aactmcp/internal/catalog"
	"github.com/leapstack-labs/aactmcp/internal/memo"
	"github.com/leapstack-labs/aactmcp/pkg/core"
)

const (
	// DefaultMaxRows is the row cap applied when a caller gives none.
	DefaultMaxRows = 25

	// DefaultProgressThreshold is the row count above which a query reports progress.
	DefaultProgressThreshold = 10

	insightAddedMessage = "Insight added successfully"
)

// Gateway is the query surface the operations delegate to.
type Gateway interface {
	ListTables(ctx context.Context) ([]core.TableInfo, error)
	DescribeTable(ctx context.Context, table string) ([]core.ColumnInfo, error)
	RunQuery(ctx context.Context, query string, rowLimit int) (*core.QueryResult, error)
}

// Surface binds the operations to their collaborators.
type Surface struct {
	gateway  Gateway
	memo     *memo.Memo
	catalog  *catalog.Catalog
	reporter Reporter
	logger   *slog.Logger

	progressThreshold int
}

// Option configures a Surface.
type Option func(*Surface)

// WithReporter sets where lifecycle notifications go.
func WithReporter(r Reporter) Option {
	return func(s *Surface) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithLogger sets the surface logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgressThreshold overrides DefaultProgressThreshold.
func WithProgressThreshold(n int) Option {
	return func(s *Surface) { s.progressThreshold = n }
}

// New returns a surface over gw, m and cat.
func New(gw Gateway, m *memo.Memo, cat *catalog.Catalog, opts ...Option) *Surface {
	if cat == nil {
		cat = catalog.Empty()
	}
	s := &Surface{
		gateway:           gw,
		memo:              m,
		catalog:           cat,
		reporter:          NopReporter{},
		logger:            slog.New(slog.DiscardHandler),
		progressThreshold: DefaultProgressThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReporter replaces the reporter. Call before serving requests.
func (s *Surface) SetReporter(r Reporter) {
	if r != nil {
		s.reporter = r
	}
}

// ListTables returns every table of the governed schema.
func (s *Surface) ListTables(ctx context.Context) ([]core.TableInfo, error) {
	s.reporter.Info(ctx, "Fetching database tables...")

	tables, err := s.gateway.ListTables(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to list tables")
	}

	s.reporter.Debug(ctx, fmt.Sprintf("Retrieved %d tables", len(tables)))
	return tables, nil
}

// DescribeTable returns the columns of table in declared order.
func (s *Surface) DescribeTable(ctx context.Context, table string) ([]core.ColumnInfo, error) {
	if table == "" {
		return nil, s.fail(ctx,
			core.Errorf(core.KindInvalidArgument, "Missing table_name argument"),
			"Failed to describe table")
	}

	s.reporter.Info(ctx, "Examining structure of table: "+table)

	cols, err := s.gateway.DescribeTable(ctx, table)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to describe table "+table)
	}

	s.reporter.Debug(ctx, fmt.Sprintf("Retrieved %d columns for table %s", len(cols), table))
	return cols, nil
}

// ReadQuery runs a SELECT statement with at most maxRows rows returned.
func (s *Surface) ReadQuery(ctx context.Context, query string, maxRows int) (*core.QueryResult, error) {
	if query == "" {
		return nil, s.fail(ctx,
			core.Errorf(core.KindInvalidArgument, "Missing query argument"),
			"Query execution failed")
	}

	s.reporter.Info(ctx, fmt.Sprintf("Executing query (max %d rows)...", maxRows))

	res, err := s.gateway.RunQuery(ctx, query, maxRows)
	if err != nil {
		return nil, s.fail(ctx, err, "Query execution failed")
	}

	s.reporter.Debug(ctx, fmt.Sprintf("Query returned %d rows", res.RowCount))
	if res.RowCount > s.progressThreshold {
		s.reporter.Progress(ctx, 1.0, 1.0, fmt.Sprintf("Retrieved %d rows", res.RowCount))
	}
	return res, nil
}

// AppendInsight records finding in the memo.
func (s *Surface) AppendInsight(ctx context.Context, finding string) (*core.InsightResponse, error) {
	if strings.TrimSpace(finding) == "" {
		return nil, s.fail(ctx,
			core.Errorf(core.KindInvalidArgument, "Missing finding argument"),
			"Failed to add insight")
	}

	total, err := s.memo.Append(finding)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to add insight")
	}

	s.reporter.Info(ctx, fmt.Sprintf("Insight recorded successfully (total: %d)", total))
	s.reporter.ResourceListChanged(ctx)

	return &core.InsightResponse{
		Success:       true,
		TotalInsights: total,
		Message:       insightAddedMessage,
	}, nil
}

// SchemaDocument renders the schema catalog resource.
func (s *Surface) SchemaDocument() string {
	return s.catalog.Render()
}

// InsightsMemo renders the insight memo resource.
func (s *Surface) InsightsMemo() string {
	return s.memo.Render()
}

// fail reports err at error level under prefix and returns it unchanged.
func (s *Surface) fail(ctx context.Context, err error, prefix string) error {
	msg := prefix + ": " + err.Error()
	s.logger.Debug("operation failed", slog.String("kind", core.KindOf(err).String()), slog.String("error", err.Error()))
	s.reporter.Error(ctx, msg)
	return err
}
