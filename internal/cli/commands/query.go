package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/cli/output"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	MaxRows int
	Input   string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a read query against the database",
		Long: `Run a SELECT statement through the same guard and row cap as the
read_query tool.

SQL is taken from the arguments, from --input, or from piped stdin.
When invoked without SQL on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  aactmcp query "SELECT nct_id, brief_title FROM studies"

  # Cap the rows and output as CSV
  aactmcp query "SELECT * FROM conditions" --max-rows 100 -o csv

  # Interactive mode
  aactmcp query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.MaxRows, "max-rows", "n", 0, "Maximum rows to return (default query.default_max_rows)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	maxRows := opts.MaxRows
	if !cmd.Flags().Changed("max-rows") {
		maxRows = cmdCtx.Cfg.Query.DefaultMaxRows
	}

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !output.IsTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, maxRows)
	}

	gw, cleanup, err := cmdCtx.OpenGateway()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := gw.RunQuery(cmd.Context(), sqlQuery, maxRows)
	if err != nil {
		return err
	}
	if err := renderRows(cmd.OutOrStdout(), nil, result.Rows, cmdCtx.Cfg.Output); err != nil {
		return err
	}
	if result.Truncated {
		cmdCtx.Logger.Debug("result truncated", "max_rows", maxRows)
	}
	return nil
}
