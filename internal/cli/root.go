// Package cli provides the command-line interface for aactmcp.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/cli/commands"
	"github.com/leapstack-labs/aactmcp/internal/cli/config"

	// Register the database adapters.
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/sqlite"
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/sqlserver"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		envFile string
	)

	rootCmd := &cobra.Command{
		Use:   "aactmcp",
		Short: "MCP server for the AACT clinical trials database",
		Long: `aactmcp exposes the AACT (Aggregate Analysis of ClinicalTrials.gov)
database to MCP clients as a small set of read-only tools.

Clients can list tables, describe columns, run capped SELECT queries and
record findings in an insights memo. The schema catalog and the memo are
also served as MCP resources.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// cmd.Flags() holds the command's own flags and the inherited persistent ones.
			loader := config.NewLoader()
			cfg, err := loader.Load(cfgFile, envFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), cfg.Log)
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if f := loader.ConfigFileUsed(); f != "" {
				logger.Debug("using config file", slog.String("path", f))
			}
			if f := loader.EnvFileUsed(); f != "" {
				logger.Debug("using env file", slog.String("path", f))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./aactmcp.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file with DB_USER and DB_PASSWORD")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|md|yaml)")
	rootCmd.PersistentFlags().String("schema-path", "", "Path to the schema catalog document")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewServeCommand(Version))
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewDescribeCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewLogger builds the stderr logger described by cfg.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for aactmcp.

To load completions:

Bash:
  $ source <(aactmcp completion bash)

Zsh:
  $ aactmcp completion zsh > "${fpath[1]}/_aactmcp"

Fish:
  $ aactmcp completion fish | source

PowerShell:
  PS> aactmcp completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
