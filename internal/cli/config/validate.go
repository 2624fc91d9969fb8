package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Target == nil || c.Target.Type == "" {
		return fmt.Errorf("target.type is required")
	}
	if !adapter.IsRegistered(c.Target.Type) {
		return &adapter.UnknownAdapterError{Type: c.Target.Type, Available: adapter.ListAdapters()}
	}
	if c.Target.Port < 0 {
		return fmt.Errorf("target.port must not be negative, got %d", c.Target.Port)
	}

	if c.Query.DefaultMaxRows < 1 {
		return fmt.Errorf("query.default_max_rows must be at least 1, got %d", c.Query.DefaultMaxRows)
	}
	if c.Query.ProgressThreshold < 0 {
		return fmt.Errorf("query.progress_threshold must not be negative, got %d", c.Query.ProgressThreshold)
	}

	if !slices.Contains(Transports, c.Server.Transport) {
		return fmt.Errorf("unknown server.transport %q (expected %s)", c.Server.Transport, strings.Join(Transports, " or "))
	}
	if c.Server.MaxConcurrentCalls < 1 {
		return fmt.Errorf("server.max_concurrent_calls must be at least 1, got %d", c.Server.MaxConcurrentCalls)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("unknown log.level %q (expected one of %s)", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("unknown log.format %q (expected text or json)", c.Log.Format)
	}
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("unknown output %q (expected one of %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	return nil
}
