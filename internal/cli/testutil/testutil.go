// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	// sqlite driver for the fixture database.
	_ "modernc.org/sqlite"
)

// fixtureSchema is a small slice of the AACT ctgov schema.
const fixtureSchema = `
	CREATE TABLE studies (
		nct_id VARCHAR(20) PRIMARY KEY,
		brief_title VARCHAR(300),
		phase TEXT,
		enrollment INTEGER
	);

	CREATE TABLE conditions (
		id INTEGER PRIMARY KEY,
		nct_id VARCHAR(20) NOT NULL,
		name TEXT
	);

	INSERT INTO studies (nct_id, brief_title, phase, enrollment) VALUES
		('NCT00000001', 'Aspirin for Headache', 'Phase 3', 120),
		('NCT00000002', 'Insulin Dosing Study', 'Phase 2', 48),
		('NCT00000003', 'Exercise and Mood', NULL, 300);

	INSERT INTO conditions (id, nct_id, name) VALUES
		(1, 'NCT00000001', 'Headache'),
		(2, 'NCT00000002', 'Diabetes'),
		(3, 'NCT00000003', 'Depression');
`

// SetupTestDatabase creates a SQLite database seeded with AACT-like tables
// (studies, conditions) and returns its path.
func SetupTestDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "aact.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(context.Background(), fixtureSchema); err != nil {
		t.Fatalf("failed to seed fixture database: %v", err)
	}
	return path
}

// WriteConfig writes an aactmcp.yaml next to the database pointing a sqlite
// target at dbPath, appending extra YAML, and returns the config path.
func WriteConfig(t *testing.T, dbPath, extra string) string {
	t.Helper()

	dir := filepath.Dir(dbPath)
	content := fmt.Sprintf(`target:
  type: sqlite
  database: %q
  schema: main
schema_path: %q
%s`, dbPath, filepath.Join(dir, "database_schema.json"), extra)

	path := filepath.Join(dir, "aactmcp.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// WriteSchemaDocument writes a schema catalog document beside dbPath.
func WriteSchemaDocument(t *testing.T, dbPath, content string) string {
	t.Helper()

	path := filepath.Join(filepath.Dir(dbPath), "database_schema.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write schema document: %v", err)
	}
	return path
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
