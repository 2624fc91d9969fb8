package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/aactmcp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{"schema_version":"1.0","database":"aact","tables":{"b_table":["id","name"],"a_table":["nct_id","phase","enrollment"]},"generated_by":"hand"}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database_schema.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	c := Load(writeFile(t, sampleDoc), testutil.NewTestLogger(t))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a_table", "b_table"}, c.TableNames())
	assert.Equal(t, "1.0", c.Version())
	assert.Equal(t, "aact", c.Database())

	cols, ok := c.Columns("a_table")
	require.True(t, ok)
	assert.Equal(t, []string{"nct_id", "phase", "enrollment"}, cols)

	_, ok = c.Columns("missing")
	assert.False(t, ok)
}

func TestLoad_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{name: "malformed json", path: func(t *testing.T) string { return writeFile(t, `{"tables": [`) }},
		{name: "wrong shape", path: func(t *testing.T) string { return writeFile(t, `{"tables": {"studies": "nct_id"}}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewCaptureLogger()

			c := Load(tt.path(t), logger)

			require.NotNil(t, c)
			assert.Equal(t, 0, c.Len())
			assert.Equal(t, "{}", c.Render())
			assert.Contains(t, logs.String(), "Error loading schema")
			assert.Contains(t, logs.String(), "level=ERROR")
		})
	}
}

func TestRender_Verbatim(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	rendered := c.Render()

	// Original key order and unknown fields survive.
	assert.Less(t, strings.Index(rendered, `"b_table"`), strings.Index(rendered, `"a_table"`))
	assert.Contains(t, rendered, `"generated_by": "hand"`)
	assert.Contains(t, rendered, "\n  \"schema_version\": \"1.0\",")

	var roundTrip, original any
	require.NoError(t, json.Unmarshal([]byte(rendered), &roundTrip))
	require.NoError(t, json.Unmarshal([]byte(sampleDoc), &original))
	assert.Equal(t, original, roundTrip)
}

func TestTableNames_ReturnsCopy(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	names := c.TableNames()
	names[0] = "mutated"
	assert.Equal(t, "a_table", c.TableNames()[0])
}

func TestDocumentWrite(t *testing.T) {
	doc := &Document{
		SchemaVersion: CurrentVersion,
		Database:      "aact",
		Tables:        map[string][]string{"studies": {"nct_id", "brief_title"}},
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	c, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"studies"}, c.TableNames())
	assert.Equal(t, strings.TrimSpace(buf.String()), c.Render())
}
