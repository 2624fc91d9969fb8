// Package config provides configuration management for the aactmcp CLI.
package config

import (
	"time"

	"github.com/leapstack-labs/aactmcp/pkg/core"
)

// Default configuration values.
const (
	DefaultTargetType     = "postgres"
	DefaultHost           = "aact-db.ctti-clinicaltrials.org"
	DefaultPort           = 5432
	DefaultDatabase       = "aact"
	DefaultSchema         = "ctgov"
	DefaultSSLMode        = "require"
	DefaultUser           = "${DB_USER}"
	DefaultPassword       = "${DB_PASSWORD}"
	DefaultSchemaPath     = "resources/database_schema.json"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultTransport      = "stdio"
	DefaultAddr           = ":8080"
	DefaultMaxConcurrency = 8
	DefaultMaxRows        = 25
	DefaultProgressRows   = 10
	DefaultOutput         = "table"
	DefaultEnvFile        = ".env"

	// EnvPrefix prefixes every environment variable read into the config.
	// Nested keys use a double underscore: AACTMCP_TARGET__HOST.
	EnvPrefix = "AACTMCP_"

	redacted = "********"
)

// Transports supported by the serve command.
var Transports = []string{"stdio", "http"}

// OutputFormats supported by the tabular commands.
var OutputFormats = []string{"table", "json", "csv", "md", "yaml"}

// Config holds all CLI configuration options.
type Config struct {
	Target     *TargetConfig `koanf:"target" yaml:"target"`
	SchemaPath string        `koanf:"schema_path" yaml:"schema_path"`
	Log        LogConfig     `koanf:"log" yaml:"log"`
	Server     ServerConfig  `koanf:"server" yaml:"server"`
	Query      QueryConfig   `koanf:"query" yaml:"query"`
	Output     string        `koanf:"output" yaml:"output"`
	Verbose    bool          `koanf:"verbose" yaml:"verbose"`
}

// TargetConfig describes the database the server reads from.
type TargetConfig struct {
	Type            string            `koanf:"type" yaml:"type"`
	Host            string            `koanf:"host" yaml:"host,omitempty"`
	Port            int               `koanf:"port" yaml:"port,omitempty"`
	Database        string            `koanf:"database" yaml:"database,omitempty"`
	User            string            `koanf:"user" yaml:"user,omitempty"`
	Password        string            `koanf:"password" yaml:"password,omitempty"`
	Schema          string            `koanf:"schema" yaml:"schema,omitempty"`
	Options         map[string]string `koanf:"options" yaml:"options,omitempty"`
	MaxOpenConns    int               `koanf:"max_open_conns" yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int               `koanf:"max_idle_conns" yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration     `koanf:"conn_max_lifetime" yaml:"conn_max_lifetime,omitempty"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// ServerConfig controls the MCP server.
type ServerConfig struct {
	Name               string `koanf:"name" yaml:"name"`
	Transport          string `koanf:"transport" yaml:"transport"`
	Addr               string `koanf:"addr" yaml:"addr"`
	MaxConcurrentCalls int    `koanf:"max_concurrent_calls" yaml:"max_concurrent_calls"`
}

// QueryConfig controls read query execution.
type QueryConfig struct {
	DefaultMaxRows    int  `koanf:"default_max_rows" yaml:"default_max_rows"`
	ProgressThreshold int  `koanf:"progress_threshold" yaml:"progress_threshold"`
	ReadOnlyTx        bool `koanf:"read_only_tx" yaml:"read_only_tx"`
}

// AdapterConfig converts the target into the adapter configuration.
func (t *TargetConfig) AdapterConfig() core.AdapterConfig {
	return core.AdapterConfig{
		Type:            t.Type,
		Path:            t.Database,
		Host:            t.Host,
		Port:            t.Port,
		Database:        t.Database,
		Username:        t.User,
		Password:        t.Password,
		Schema:          t.Schema,
		Options:         t.Options,
		MaxOpenConns:    t.MaxOpenConns,
		MaxIdleConns:    t.MaxIdleConns,
		ConnMaxLifetime: t.ConnMaxLifetime,
	}
}

// Redacted returns a copy of c with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	if c.Target != nil {
		t := *c.Target
		if t.Password != "" {
			t.Password = redacted
		}
		if len(c.Target.Options) > 0 {
			t.Options = make(map[string]string, len(c.Target.Options))
			for k, v := range c.Target.Options {
				if k == "password" {
					v = redacted
				}
				t.Options[k] = v
			}
		}
		out.Target = &t
	}
	return &out
}
