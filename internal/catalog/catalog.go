// Package catalog loads the pre-generated schema document that describes
// the governed schema. The catalog is loaded once at startup and is
// read-only afterwards.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
)

// CurrentVersion is the schema_version written by the generator.
const CurrentVersion = "1.0"

// Document is the on-disk schema format:
// {"schema_version": "1.0", "database": "aact", "tables": {"studies": ["nct_id", ...]}}.
type Document struct {
	SchemaVersion string              `json:"schema_version"`
	Database      string              `json:"database"`
	Tables        map[string][]string `json:"tables"`
}

// Write encodes the document as indented JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// Catalog is an immutable view of a schema document.
type Catalog struct {
	raw   []byte
	doc   Document
	names []string
}

// Empty returns a catalog with no tables.
func Empty() *Catalog {
	return &Catalog{}
}

// Load reads the schema document at path. Any read or parse failure is
// logged and yields an empty catalog; Load never fails.
func Load(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error loading schema", slog.String("path", path), slog.Any("error", err))
		return Empty()
	}

	c, err := Parse(data)
	if err != nil {
		logger.Error("Error loading schema", slog.String("path", path), slog.Any("error", err))
		return Empty()
	}

	logger.Debug("schema loaded",
		slog.String("path", path),
		slog.String("database", c.Database()),
		slog.Int("tables", c.Len()))
	return c
}

// Parse builds a catalog from a JSON document.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}

	names := make([]string, 0, len(doc.Tables))
	for name := range doc.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	trimmed := bytes.TrimSpace(data)
	raw := make([]byte, len(trimmed))
	copy(raw, trimmed)
	return &Catalog{raw: raw, doc: doc, names: names}, nil
}

// Render returns the loaded document verbatim, indented with two spaces.
// Key order and unknown fields are preserved. An empty catalog renders "{}".
func (c *Catalog) Render() string {
	if len(c.raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, c.raw, "", "  "); err != nil {
		// raw was validated by Parse
		return string(c.raw)
	}
	return buf.String()
}

// TableNames returns the table names in ascending order.
func (c *Catalog) TableNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Columns returns the ordered column names of table.
func (c *Catalog) Columns(table string) ([]string, bool) {
	cols, ok := c.doc.Tables[table]
	if !ok {
		return nil, false
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, true
}

// Len returns the number of tables.
func (c *Catalog) Len() int { return len(c.names) }

// Version returns the document's schema_version.
func (c *Catalog) Version() string { return c.doc.SchemaVersion }

// Database returns the document's database name.
func (c *Catalog) Database() string { return c.doc.Database }
