package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/schemagen"
)

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate or show the schema catalog document",
		Long: `Manage the schema catalog served as the schema://database resource.

The catalog maps every table of the governed schema to its column names.`,
	}

	cmd.AddCommand(newSchemaGenerateCommand())
	cmd.AddCommand(newSchemaShowCommand())
	return cmd
}

func newSchemaGenerateCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Read the database catalog and write the schema document",
		Example: `  aactmcp schema generate
  aactmcp schema generate --out resources/database_schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = cmdCtx.Cfg.SchemaPath
			}

			gw, cleanup, err := cmdCtx.OpenGateway()
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := schemagen.Generate(cmd.Context(), gw, cmdCtx.Cfg.Target.Database)
			if err != nil {
				return err
			}
			if len(doc.Tables) == 0 {
				cmdCtx.Logger.Warn("no tables found", slog.String("schema", gw.Schema()))
			}
			if err := schemagen.WriteFile(out, doc, cmdCtx.Logger); err != nil {
				return err
			}

			cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %d tables to %s", len(doc.Tables), out))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output path (default schema_path)")
	return cmd
}

func newSchemaShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the schema document as served to clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Println(cmdCtx.LoadCatalog().Render())
			return nil
		},
	}
}
