package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/pkg/core"
	"github.com/leapstack-labs/aactmcp/pkg/dialect"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables of the governed schema",
		Example: `  aactmcp tables
  aactmcp tables -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			gw, cleanup, err := cmdCtx.OpenGateway()
			if err != nil {
				return err
			}
			defer cleanup()

			tables, err := gw.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			return renderRows(cmd.OutOrStdout(), []string{dialect.ColTableName}, tableRows(tables), cmdCtx.Cfg.Output)
		},
	}
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "describe <table>",
		Short:   "Show the columns of a table",
		Example: `  aactmcp describe studies`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			gw, cleanup, err := cmdCtx.OpenGateway()
			if err != nil {
				return err
			}
			defer cleanup()

			cols, err := gw.DescribeTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRows(cmd.OutOrStdout(), columnHeader, columnRows(cols), cmdCtx.Cfg.Output)
		},
	}
}

var columnHeader = []string{dialect.ColColumnName, dialect.ColDataType, dialect.ColMaxLength}

func tableRows(tables []core.TableInfo) []core.Row {
	rows := make([]core.Row, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, core.NewRow([]string{dialect.ColTableName}, []any{t.TableName}))
	}
	return rows
}

func columnRows(cols []core.ColumnInfo) []core.Row {
	rows := make([]core.Row, 0, len(cols))
	for _, c := range cols {
		var maxLen any
		if c.CharacterMaximumLength != nil {
			maxLen = *c.CharacterMaximumLength
		}
		rows = append(rows, core.NewRow(columnHeader, []any{c.ColumnName, c.DataType, maxLen}))
	}
	return rows
}
