// Package dialect describes how each supported database exposes its catalog.
//
// A Dialect knows the placeholder style of its driver, the default schema
// name and how to build the three introspection statements the gateway
// needs: tables of a schema, columns of one table, and every column of a
// schema. Statements are built with squirrel so arguments are always bound.
package dialect

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Result column aliases. Every catalog statement returns these names
// regardless of how the database spells them.
const (
	ColTableName    = "table_name"
	ColColumnName   = "column_name"
	ColDataType     = "data_type"
	ColMaxLength    = "character_maximum_length"
	ColOrdinalPos   = "ordinal_position"
	infoSchemaTable = "information_schema.tables"
	infoSchemaCols  = "information_schema.columns"
)

// CatalogFunc builds an introspection statement for a schema (and table, when relevant).
type CatalogFunc func(d *Dialect, schema, table string) (string, []any, error)

// Dialect holds database-specific catalog settings.
type Dialect struct {
	Name          string
	DefaultSchema string
	Placeholder   sq.PlaceholderFormat

	listTables    CatalogFunc
	describeTable CatalogFunc
	listColumns   CatalogFunc
}

// Builder assembles a Dialect.
type Builder struct {
	d *Dialect
}

// NewDialect starts a dialect using information_schema catalog queries
// and question-mark placeholders.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:          strings.ToLower(name),
		Placeholder:   sq.Question,
		listTables:    infoSchemaListTables,
		describeTable: infoSchemaDescribeTable,
		listColumns:   infoSchemaListColumns,
	}}
}

// DefaultSchema sets the schema used when none is configured.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.d.DefaultSchema = schema
	return b
}

// Placeholder sets the bind parameter style.
func (b *Builder) Placeholder(p sq.PlaceholderFormat) *Builder {
	b.d.Placeholder = p
	return b
}

// ListTables overrides the table listing statement.
func (b *Builder) ListTables(fn CatalogFunc) *Builder {
	b.d.listTables = fn
	return b
}

// DescribeTable overrides the column description statement.
func (b *Builder) DescribeTable(fn CatalogFunc) *Builder {
	b.d.describeTable = fn
	return b
}

// ListColumns overrides the schema-wide column statement.
func (b *Builder) ListColumns(fn CatalogFunc) *Builder {
	b.d.listColumns = fn
	return b
}

// Build returns the configured dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}

// Schema returns schema, or the dialect default when schema is empty.
func (d *Dialect) Schema(schema string) string {
	if schema == "" {
		return d.DefaultSchema
	}
	return schema
}

// ListTablesSQL returns the statement listing tables of schema, ordered by name.
// It yields one column: table_name.
func (d *Dialect) ListTablesSQL(schema string) (string, []any, error) {
	return d.listTables(d, d.Schema(schema), "")
}

// DescribeTableSQL returns the statement describing table's columns in declared order.
// It yields column_name, data_type and character_maximum_length.
func (d *Dialect) DescribeTableSQL(schema, table string) (string, []any, error) {
	return d.describeTable(d, d.Schema(schema), table)
}

// ListColumnsSQL returns the statement listing every column of schema,
// ordered by table name then declared position.
// It yields table_name and column_name.
func (d *Dialect) ListColumnsSQL(schema string) (string, []any, error) {
	return d.listColumns(d, d.Schema(schema), "")
}

func as(col, alias string) string {
	return col + " AS " + alias
}

func infoSchemaListTables(d *Dialect, schema, _ string) (string, []any, error) {
	return sq.Select(as("table_name", ColTableName)).
		From(infoSchemaTable).
		Where(sq.Eq{"table_schema": schema}).
		OrderBy("table_name").
		PlaceholderFormat(d.Placeholder).
		ToSql()
}

func infoSchemaDescribeTable(d *Dialect, schema, table string) (string, []any, error) {
	return sq.Select(
		as("column_name", ColColumnName),
		as("data_type", ColDataType),
		as("character_maximum_length", ColMaxLength),
	).
		From(infoSchemaCols).
		Where(sq.Eq{"table_schema": schema}).
		Where(sq.Eq{"table_name": table}).
		OrderBy("ordinal_position").
		PlaceholderFormat(d.Placeholder).
		ToSql()
}

func infoSchemaListColumns(d *Dialect, schema, _ string) (string, []any, error) {
	return sq.Select(
		as("table_name", ColTableName),
		as("column_name", ColColumnName),
	).
		From(infoSchemaCols).
		Where(sq.Eq{"table_schema": schema}).
		OrderBy("table_name", "ordinal_position").
		PlaceholderFormat(d.Placeholder).
		ToSql()
}
