package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/leapstack-labs/aactmcp/pkg/core"
)

// Tool names.
const (
	ToolListTables    = "list_tables"
	ToolDescribeTable = "describe_table"
	ToolReadQuery     = "read_query"
	ToolAppendInsight = "append_insight"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool(ToolListTables,
			mcp.WithDescription(`Get an overview of all available tables in the AACT database. 
This tool helps you understand the database structure before starting your analysis 
to identify relevant data sources.`),
		),
		s.call(ToolListTables, s.listTables),
	)

	s.mcp.AddTool(
		mcp.NewTool(ToolDescribeTable,
			mcp.WithDescription(`Examine the detailed structure of a specific AACT table, including column names and data types.
Use this before querying to ensure you target the right columns and understand the data format.`),
			mcp.WithString("table_name",
				mcp.Required(),
				mcp.Description("Name of the table to describe"),
			),
		),
		s.call(ToolDescribeTable, s.describeTable),
	)

	s.mcp.AddTool(
		mcp.NewTool(ToolReadQuery,
			mcp.WithDescription(`Execute a SELECT query on the AACT clinical trials database. 
Use this tool to extract and analyze specific data from any table.

Parameters:
- query: The SQL query to execute (must be a SELECT statement)
- max_rows: Maximum number of rows to return (default: 25). Increase this value if you need more data.`),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The SQL query to execute (must be a SELECT statement)"),
			),
			mcp.WithNumber("max_rows",
				mcp.Description("Maximum number of rows to return"),
				mcp.DefaultNumber(float64(s.defaultMaxRows)),
			),
		),
		s.call(ToolReadQuery, s.readQuery),
	)

	s.mcp.AddTool(
		mcp.NewTool(ToolAppendInsight,
			mcp.WithDescription(`Record key findings and insights discovered during your analysis. 
Use this tool whenever you uncover meaningful patterns, trends, or notable observations 
about clinical trials. This helps build a comprehensive analytical narrative 
and ensures important discoveries are documented.`),
			mcp.WithString("finding",
				mcp.Required(),
				mcp.Description("The insight to record"),
			),
		),
		s.call(ToolAppendInsight, s.appendInsight),
	)
}

type toolFunc func(ctx context.Context, args map[string]any) (any, error)

// call adapts fn to an MCP tool handler. It bounds concurrency, tags the
// call with a correlation id and turns failures into error results.
func (s *Server) call(name string, fn toolFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := s.logger.With(slog.String("tool", name), slog.String("call_id", uuid.NewString()))

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for a free call slot: %w", err)
		}
		defer s.sem.Release(1)

		ctx = withCallLogger(ctx, logger)
		if meta := req.Params.Meta; meta != nil && meta.ProgressToken != nil {
			ctx = withProgressToken(ctx, meta.ProgressToken)
		}

		start := time.Now()
		out, err := fn(ctx, req.GetArguments())
		if err != nil {
			kind := core.KindOf(err)
			logger.Warn("tool call failed",
				slog.String("kind", kind.String()),
				slog.Any("error", err),
				slog.Duration("elapsed", time.Since(start)))
			return mcp.NewToolResultError(kind.String() + ": " + err.Error()), nil
		}

		body, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s result: %w", name, err)
		}
		logger.Debug("tool call completed", slog.Duration("elapsed", time.Since(start)))
		return mcp.NewToolResultText(string(body)), nil
	}
}

func (s *Server) listTables(ctx context.Context, _ map[string]any) (any, error) {
	return s.surface.ListTables(ctx)
}

func (s *Server) describeTable(ctx context.Context, args map[string]any) (any, error) {
	table, err := stringArg(args, "table_name")
	if err != nil {
		return nil, s.badArgument(ctx, err, "Failed to describe table")
	}
	return s.surface.DescribeTable(ctx, table)
}

func (s *Server) readQuery(ctx context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, s.badArgument(ctx, err, "Query execution failed")
	}
	maxRows, err := intArg(args, "max_rows", s.defaultMaxRows)
	if err != nil {
		return nil, s.badArgument(ctx, err, "Query execution failed")
	}
	return s.surface.ReadQuery(ctx, query, maxRows)
}

func (s *Server) appendInsight(ctx context.Context, args map[string]any) (any, error) {
	finding, err := stringArg(args, "finding")
	if err != nil {
		return nil, s.badArgument(ctx, err, "Failed to add insight")
	}
	return s.surface.AppendInsight(ctx, finding)
}

// badArgument reports a malformed argument the same way the surface
// reports its own failures.
func (s *Server) badArgument(ctx context.Context, err error, prefix string) error {
	s.reporter.Error(ctx, prefix+": "+err.Error())
	return err
}
