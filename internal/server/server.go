// Package server exposes the analysis tools over the Model Context Protocol.
//
// The server speaks MCP over stdio or streamable HTTP. Tool calls are bounded
// by a semaphore and each one carries a correlation id in its log records.
// Lifecycle notifications emitted by the tools are forwarded to the calling
// session as MCP log and progress notifications.
package server

import (
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/semaphore"

	"github.com/leapstack-labs/aactmcp/internal/memo"
	"github.com/leapstack-labs/aactmcp/internal/tools"
)

// DefaultName is the server name announced to clients.
const DefaultName = "AACT Clinical Trials Database"

// DefaultMaxConcurrentCalls bounds concurrent tool calls when Config leaves it unset.
const DefaultMaxConcurrentCalls = 8

// Instructions tell the client how to use the tools.
const Instructions = `You are an MCP server providing access to the AACT (Aggregate Analysis of ClinicalTrials.gov) database.

This server enables querying and analysis of clinical trial data from ClinicalTrials.gov.
Use the available tools to:
1. First explore the database structure with list_tables
2. Examine specific tables with describe_table
3. Query data using read_query (SELECT statements only)
4. Record important findings with append_insight

The database contains comprehensive clinical trial information including studies, outcomes, 
interventions, sponsors, and more. Always validate table and column names before querying.

CRITICAL: If you use this tool, your answer MUST be based on data received from the AACT database exclusively. 
Do not add other data from your own knowledge or make any assumptions. 
Everything must be grounded in the data received from the tool.`

// Config holds server settings.
type Config struct {
	Name               string
	Version            string
	MaxConcurrentCalls int
	DefaultMaxRows     int
	Logger             *slog.Logger
}

// Server is an MCP server bound to a tool surface.
type Server struct {
	mcp            *mcpserver.MCPServer
	surface        *tools.Surface
	sem            *semaphore.Weighted
	defaultMaxRows int
	reporter       *notifier
	logger         *slog.Logger
}

// New registers the tools and resources of surface on a new MCP server.
// When insights is non-nil every append is broadcast to all sessions as
// a resource update of the insights memo.
func New(surface *tools.Surface, insights *memo.Memo, cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MaxConcurrentCalls <= 0 {
		cfg.MaxConcurrentCalls = DefaultMaxConcurrentCalls
	}
	if cfg.DefaultMaxRows <= 0 {
		cfg.DefaultMaxRows = tools.DefaultMaxRows
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		mcp: mcpserver.NewMCPServer(
			cfg.Name,
			cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(true, true),
			mcpserver.WithLogging(),
			mcpserver.WithRecovery(),
			mcpserver.WithInstructions(Instructions),
		),
		surface:        surface,
		sem:            semaphore.NewWeighted(int64(cfg.MaxConcurrentCalls)),
		defaultMaxRows: cfg.DefaultMaxRows,
		reporter:       &notifier{logger: logger},
		logger:         logger,
	}

	surface.SetReporter(s.reporter)
	s.registerTools()
	s.registerResources()

	if insights != nil {
		insights.Subscribe(s.broadcastMemoUpdated)
	}

	logger.Debug("mcp server configured",
		slog.String("name", cfg.Name),
		slog.Int("max_concurrent_calls", cfg.MaxConcurrentCalls))
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

func (s *Server) broadcastMemoUpdated(total int) {
	s.logger.Debug("insights memo updated", slog.Int("total", total))
	s.mcp.SendNotificationToAllClients(methodResourceUpdated, map[string]any{
		"uri": InsightsURI,
	})
}
