// Package schemagen builds the schema catalog document from a live database.
package schemagen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/aactmcp/internal/catalog"
	"github.com/leapstack-labs/aactmcp/internal/gateway"
)

// ColumnLister returns every column of the governed schema in table and ordinal order.
type ColumnLister interface {
	Columns(ctx context.Context) ([]gateway.ColumnRef, error)
}

// Generate reads the governed schema and returns its catalog document.
func Generate(ctx context.Context, src ColumnLister, database string) (*catalog.Document, error) {
	refs, err := src.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	tables := make(map[string][]string)
	for _, ref := range refs {
		tables[ref.Table] = append(tables[ref.Table], ref.Column)
	}

	return &catalog.Document{
		SchemaVersion: catalog.CurrentVersion,
		Database:      database,
		Tables:        tables,
	}, nil
}

// WriteFile writes doc to path, creating parent directories as needed.
func WriteFile(path string, doc *catalog.Document, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create schema file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := doc.Write(f); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	logger.Info("schema written", slog.String("path", path), slog.Int("tables", len(doc.Tables)))
	return f.Close()
}
