package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/aactmcp/internal/cli/testutil"
	"github.com/leapstack-labs/aactmcp/internal/gateway"
	"github.com/leapstack-labs/aactmcp/pkg/adapter"
	"github.com/leapstack-labs/aactmcp/pkg/adapters/sqlite"
	"github.com/leapstack-labs/aactmcp/pkg/core"
)

func TestCommandFlags(t *testing.T) {
	serve := NewServeCommand("test")
	assert.Equal(t, "serve", serve.Use)
	for _, flag := range []string{"transport", "addr", "read-only"} {
		assert.NotNil(t, serve.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	query := NewQueryCommand()
	assert.Equal(t, "query [SQL]", query.Use)
	assert.NotEmpty(t, query.Example)
	for _, flag := range []string{"max-rows", "input"} {
		assert.NotNil(t, query.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	schema := NewSchemaCommand()
	names := make([]string, 0, len(schema.Commands()))
	for _, c := range schema.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"generate", "show"}, names)
}

func TestCommandsRequireConfig(t *testing.T) {
	cmd := NewTablesCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, errNoConfig)
}

func sampleRows() []core.Row {
	cols := []string{"nct_id", "phase", "enrollment"}
	return []core.Row{
		core.NewRow(cols, []any{"NCT1", "Phase 3", int64(120)}),
		core.NewRow(cols, []any{"NCT2", nil, int64(48)}),
	}
}

func TestRenderRows(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{
			format: "csv",
			want:   "nct_id,phase,enrollment\nNCT1,Phase 3,120\nNCT2,NULL,48\n",
		},
		{
			format: "md",
			want: "| nct_id | phase | enrollment |\n" +
				"| --- | --- | --- |\n" +
				"| NCT1 | Phase 3 | 120 |\n" +
				"| NCT2 | NULL | 48 |\n",
		},
		{
			format: "yaml",
			want: "- nct_id: NCT1\n  phase: Phase 3\n  enrollment: 120\n" +
				"- nct_id: NCT2\n  phase: null\n  enrollment: 48\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderRows(&buf, nil, sampleRows(), tt.format))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderRows_JSONKeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderRows(&buf, nil, sampleRows(), "json"))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"nct_id"`), strings.Index(out, `"phase"`))
	assert.Less(t, strings.Index(out, `"phase"`), strings.Index(out, `"enrollment"`))
	assert.Contains(t, out, `"phase": null`)
}

func TestRenderRows_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderRows(&buf, nil, sampleRows(), "table"))

	out := buf.String()
	assert.Contains(t, out, "NCT_ID")
	assert.Contains(t, out, "Phase 3")
	assert.True(t, strings.HasSuffix(out, "(2 rows)\n"))
}

func TestRenderRows_Empty(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"table", "(0 rows)\n"},
		{"md", "(0 rows)\n"},
		{"json", "[]\n"},
		{"yaml", "[]\n"},
		{"csv", "table_name\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderRows(&buf, []string{"table_name"}, nil, tt.format))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "2024-05-01T12:00:00Z", formatValue(ts))
	assert.Equal(t, "3.5", formatValue(3.5))
	assert.Equal(t, "a|b", formatValue("a|b"))
}

func TestColumnRows(t *testing.T) {
	n := int64(300)
	rows := columnRows([]core.ColumnInfo{
		{ColumnName: "brief_title", DataType: "character varying", CharacterMaximumLength: &n},
		{ColumnName: "enrollment", DataType: "integer"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, columnHeader, rows[0].Columns)
	assert.Equal(t, int64(300), rows[0].Values[2])
	assert.Nil(t, rows[1].Values[2])
}

func TestCompareTables(t *testing.T) {
	tests := []struct {
		name        string
		catalog, db []string
		wantMissDB  []string
		wantMissCat []string
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, []string{}, []string{}},
		{"both sides", []string{"a", "old"}, []string{"a", "new"}, []string{"old"}, []string{"new"}},
		{"empty database", []string{"a"}, nil, []string{"a"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := compareTables(tt.catalog, tt.db)
			assert.Equal(t, tt.wantMissDB, d.MissingFromDatabase)
			assert.Equal(t, tt.wantMissCat, d.MissingFromCatalog)
		})
	}
}

func TestCheckCatalog(t *testing.T) {
	dbPath := testutil.SetupTestDatabase(t)

	_, check := checkCatalog(dbPath + ".missing")
	assert.Equal(t, StatusWarn, check.Status)

	path := testutil.WriteSchemaDocument(t, dbPath, `{"schema_version":"1.0","database":"aact","tables":{"studies":["nct_id"]}}`)
	cat, check := checkCatalog(path)
	assert.Equal(t, StatusPass, check.Status)
	assert.Contains(t, check.Detail, "1 tables (version 1.0)")
	assert.Equal(t, 1, cat.Len())

	testutil.WriteSchemaDocument(t, dbPath, `not json`)
	_, check = checkCatalog(path)
	assert.Equal(t, StatusFail, check.Status)
}

func TestTargetLabel(t *testing.T) {
	assert.Equal(t, "db.example.org:5432/aact", targetLabel("db.example.org", 5432, "aact"))
	assert.Equal(t, "db.example.org/aact", targetLabel("db.example.org", 0, "aact"))
	assert.Equal(t, "aact.db", targetLabel("", 0, "aact.db"))
}

func newREPL(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	path := testutil.SetupTestDatabase(t)
	cfg := adapter.Config{Type: "sqlite", Path: path}
	store := adapter.NewLazy(sqlite.New(nil), cfg, nil)
	t.Cleanup(func() { _ = store.Close() })

	var out, errOut bytes.Buffer
	return &replSession{
		gw:      gateway.New(store, "main"),
		out:     &out,
		errOut:  &errOut,
		format:  "csv",
		maxRows: 2,
	}, &out, &errOut
}

func TestREPL_MultiLineQuery(t *testing.T) {
	sess, out, errOut := newREPL(t)
	ctx := context.Background()
	var buf strings.Builder

	assert.False(t, sess.handleLine(ctx, "SELECT nct_id", &buf))
	assert.NotZero(t, buf.Len(), "statement continues until a semicolon")
	assert.Empty(t, out.String())

	assert.False(t, sess.handleLine(ctx, "FROM studies ORDER BY nct_id;", &buf))
	assert.Zero(t, buf.Len())
	assert.Empty(t, errOut.String())
	assert.Equal(t, "nct_id\nNCT00000001\nNCT00000002\n(limited to 2 rows)\n\n", out.String())
}

func TestREPL_RejectedQuery(t *testing.T) {
	sess, _, errOut := newREPL(t)
	var buf strings.Builder

	assert.False(t, sess.handleLine(context.Background(), "DROP TABLE studies;", &buf))
	assert.Contains(t, errOut.String(), "Only SELECT queries are allowed")
}

func TestREPL_DotCommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		line    string
		quit    bool
		wantOut string
		wantErr string
	}{
		{line: ".tables", wantOut: "table_name\nconditions\nstudies\n"},
		{line: ".schema conditions", wantOut: "column_name,data_type,character_maximum_length\nid,INTEGER,NULL\nnct_id,VARCHAR(20),NULL\nname,TEXT,NULL\n"},
		{line: ".schema", wantErr: "Usage: .schema <table>"},
		{line: ".schema nope", wantErr: "table 'nope' not found"},
		{line: ".help", wantOut: ".tables"},
		{line: ".bogus", wantErr: "Unknown command: .bogus"},
		{line: ".quit", quit: true},
		{line: ".EXIT", quit: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			sess, out, errOut := newREPL(t)
			var buf strings.Builder

			assert.Equal(t, tt.quit, sess.handleLine(ctx, tt.line, &buf))
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestNewTableCompleter(t *testing.T) {
	sess, _, _ := newREPL(t)

	completer := newTableCompleter(context.Background(), sess.gw)
	var names []string
	for _, child := range completer.GetChildren() {
		names = append(names, strings.TrimSpace(string(child.GetName())))
	}
	assert.Contains(t, names, "studies")
	assert.Contains(t, names, "conditions")
	assert.Contains(t, names, ".schema")
}
