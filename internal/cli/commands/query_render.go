package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/aactmcp/pkg/core"
)

// renderRows writes rows in format. cols fixes the header when rows is empty.
func renderRows(w io.Writer, cols []string, rows []core.Row, format string) error {
	if len(rows) > 0 {
		cols = rows[0].Columns
	}

	switch format {
	case "json":
		return renderJSON(w, rows)
	case "csv":
		return renderCSV(w, cols, rows)
	case "md", "markdown":
		return renderMarkdown(w, cols, rows)
	case "yaml":
		return renderYAML(w, rows)
	default:
		return renderTable(w, cols, rows)
	}
}

func renderTable(w io.Writer, cols []string, rows []core.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		out := make(table.Row, len(row.Values))
		for i, v := range row.Values {
			out[i] = formatValue(v)
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderJSON(w io.Writer, rows []core.Row) error {
	if rows == nil {
		rows = []core.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderCSV(w io.Writer, cols []string, rows []core.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(row.Values))
		for i, v := range row.Values {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderMarkdown(w io.Writer, cols []string, rows []core.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		values := make([]string, len(row.Values))
		for i, v := range row.Values {
			values[i] = strings.ReplaceAll(formatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// renderYAML writes rows as a sequence of mappings in column order.
func renderYAML(w io.Writer, rows []core.Row) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, col := range row.Columns {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: col},
				yamlValue(row.Values[i]),
			)
		}
		seq.Content = append(seq.Content, m)
	}
	if len(seq.Content) == 0 {
		seq.Style = yaml.FlowStyle
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func yamlValue(v any) *yaml.Node {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: formatValue(v)}
	}
	return &n
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
