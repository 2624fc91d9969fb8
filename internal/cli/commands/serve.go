package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/memo"
	"github.com/leapstack-labs/aactmcp/internal/server"
	"github.com/leapstack-labs/aactmcp/internal/tools"
)

// NewServeCommand creates the serve command.
func NewServeCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the AACT MCP server.

The server exposes list_tables, describe_table, read_query and append_insight
as MCP tools, plus the schema://database and memo://insights resources.
With the stdio transport the MCP stream uses stdin and stdout and logs go to
stderr. With the http transport the server listens on --addr and serves the
streamable HTTP endpoint at /mcp.

The database is connected on first use, so the server starts even when the
database is unreachable.`,
		Example: `  # Serve over stdio (for MCP clients that spawn the process)
  aactmcp serve

  # Serve over HTTP
  aactmcp serve --transport http --addr :8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, version)
		},
	}

	// Bound to config keys through the loader.
	cmd.Flags().String("transport", "", "Transport: stdio or http")
	cmd.Flags().String("addr", "", "Listen address for the http transport")
	cmd.Flags().Bool("read-only", false, "Run read queries inside read-only transactions")

	_ = cmd.RegisterFlagCompletionFunc("transport", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"stdio", "http"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	gw, cleanup, err := cmdCtx.OpenGateway()
	if err != nil {
		return err
	}
	defer cleanup()

	insights := memo.New(logger)
	surface := tools.New(gw, insights, cmdCtx.LoadCatalog(),
		tools.WithLogger(logger),
		tools.WithProgressThreshold(cfg.Query.ProgressThreshold),
	)
	srv := server.New(surface, insights, server.Config{
		Name:               cfg.Server.Name,
		Version:            version,
		MaxConcurrentCalls: cfg.Server.MaxConcurrentCalls,
		DefaultMaxRows:     cfg.Query.DefaultMaxRows,
		Logger:             logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		slog.String("transport", cfg.Server.Transport),
		slog.String("target", cfg.Target.Type),
		slog.String("schema", gw.Schema()),
	)

	switch cfg.Server.Transport {
	case "http":
		err = srv.ListenHTTP(ctx, cfg.Server.Addr)
	default:
		err = srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
