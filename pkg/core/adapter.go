package core

import "time"

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string

	// Pool limits; zero values leave database/sql defaults in place.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Statement is a SQL string sent to a data store.
type Statement struct {
	SQL  string
	Args []any

	// Limit caps the number of rows read; zero or less reads all rows.
	Limit int

	// ReadOnly runs the statement inside a read-only transaction.
	ReadOnly bool
}
