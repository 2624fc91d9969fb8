package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/aactmcp/pkg/adapter"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/aactmcp/pkg/adapters/sqlite"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aactmcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	flags.String("transport", "", "")
	flags.String("addr", "", "")
	flags.String("schema-path", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.Int("max-rows", 0, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_USER", "reader")
	t.Setenv("DB_PASSWORD", "secret")
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", "", nil)
	require.NoError(t, err)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.Equal(t, DefaultHost, cfg.Target.Host)
	assert.Equal(t, 5432, cfg.Target.Port)
	assert.Equal(t, "aact", cfg.Target.Database)
	assert.Equal(t, "ctgov", cfg.Target.Schema)
	assert.Equal(t, "reader", cfg.Target.User)
	assert.Equal(t, "secret", cfg.Target.Password)
	assert.Equal(t, "require", cfg.Target.Options["sslmode"])
	assert.Equal(t, DefaultSchemaPath, cfg.SchemaPath)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 8, cfg.Server.MaxConcurrentCalls)
	assert.Equal(t, 25, cfg.Query.DefaultMaxRows)
	assert.Equal(t, 10, cfg.Query.ProgressThreshold)
	assert.False(t, cfg.Query.ReadOnlyTx)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "table", cfg.Output)
}

func TestLoadConfig_UnsetCredentialsExpandEmpty(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", "", nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Target.User)
	assert.Empty(t, cfg.Target.Password)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
target:
  type: sqlite
  database: /tmp/aact.db
  schema: main
  conn_max_lifetime: 90s
schema_path: schema.json
query:
  default_max_rows: 50
  read_only_tx: true
server:
  transport: http
  addr: 127.0.0.1:9000
`)

	loader := NewLoader()
	cfg, err := loader.Load(path, "", nil)
	require.NoError(t, err)

	assert.Equal(t, path, loader.ConfigFileUsed())
	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, "/tmp/aact.db", cfg.Target.Database)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Equal(t, 90*time.Second, cfg.Target.ConnMaxLifetime)
	assert.Equal(t, "schema.json", cfg.SchemaPath)
	assert.Equal(t, 50, cfg.Query.DefaultMaxRows)
	assert.True(t, cfg.Query.ReadOnlyTx)
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Query.ProgressThreshold)
}

func TestLoadConfig_FindsFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aactmcp.yml"), []byte("output: json\n"), 0600))
	t.Chdir(dir)

	loader := NewLoader()
	cfg, err := loader.Load("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "aactmcp.yml", loader.ConfigFileUsed())
	assert.Equal(t, "json", cfg.Output)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
server:
  addr: ":1000"
  transport: http
`)

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("AACTMCP_LOG__LEVEL", "error")
		t.Setenv("AACTMCP_SERVER__ADDR", ":2000")

		cfg, err := LoadConfig(path, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, ":2000", cfg.Server.Addr)
		assert.Equal(t, "http", cfg.Server.Transport)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("AACTMCP_SERVER__ADDR", ":2000")
		flags := testFlags()
		require.NoError(t, flags.Set("addr", ":3000"))

		cfg, err := LoadConfig(path, "", flags)
		require.NoError(t, err)
		assert.Equal(t, ":3000", cfg.Server.Addr)
	})

	t.Run("unset flag keeps env", func(t *testing.T) {
		t.Setenv("AACTMCP_SERVER__ADDR", ":2000")

		cfg, err := LoadConfig(path, "", testFlags())
		require.NoError(t, err)
		assert.Equal(t, ":2000", cfg.Server.Addr)
	})

	t.Run("unmapped flag ignored", func(t *testing.T) {
		flags := testFlags()
		require.NoError(t, flags.Set("max-rows", "3"))

		cfg, err := LoadConfig(path, "", flags)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxRows, cfg.Query.DefaultMaxRows)
	})
}

func TestLoadConfig_EnvNumbersDecode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AACTMCP_TARGET__PORT", "6543")
	t.Setenv("AACTMCP_QUERY__DEFAULT_MAX_ROWS", "100")

	cfg, err := LoadConfig("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Target.Port)
	assert.Equal(t, 100, cfg.Query.DefaultMaxRows)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DB_USER=from_dotenv\nDB_PASSWORD=pw\n"), 0600))
	// godotenv sets process variables; restore them after the test.
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	require.NoError(t, os.Unsetenv("DB_USER"))
	require.NoError(t, os.Unsetenv("DB_PASSWORD"))

	loader := NewLoader()
	cfg, err := loader.Load("", envPath, nil)
	require.NoError(t, err)
	assert.Equal(t, envPath, loader.EnvFileUsed())
	assert.Equal(t, "from_dotenv", cfg.Target.User)
	assert.Equal(t, "pw", cfg.Target.Password)
}

func TestLoadConfig_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DB_USER=from_dotenv\n"), 0600))
	t.Setenv("DB_USER", "from_shell")

	cfg, err := LoadConfig("", envPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_shell", cfg.Target.User)
}

func TestLoadConfig_MissingDotEnvIgnored(t *testing.T) {
	t.Chdir(t.TempDir())

	loader := NewLoader()
	_, err := loader.Load("", ".env", nil)
	require.NoError(t, err)
	assert.Empty(t, loader.EnvFileUsed())
}

func TestLoadConfig_VerboseForcesDebug(t *testing.T) {
	t.Chdir(t.TempDir())
	flags := testFlags()
	require.NoError(t, flags.Set("verbose", "true"))

	cfg, err := LoadConfig("", "", flags)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "query:\n  default_max_rows: 0\n")
	_, err := LoadConfig(path, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "default_max_rows")
}

func validConfig() *Config {
	return &Config{
		Target: &TargetConfig{Type: "postgres", Port: 5432},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Transport: "stdio", MaxConcurrentCalls: 1},
		Query:  QueryConfig{DefaultMaxRows: 1},
		Output: "table",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "nil target", mutate: func(c *Config) { c.Target = nil }, errSubstr: "target.type is required"},
		{name: "empty type", mutate: func(c *Config) { c.Target.Type = "" }, errSubstr: "target.type is required"},
		{name: "uppercase type", mutate: func(c *Config) { c.Target.Type = "Postgres" }},
		{name: "unknown type", mutate: func(c *Config) { c.Target.Type = "oracle" }, errSubstr: "unknown adapter type"},
		{name: "negative port", mutate: func(c *Config) { c.Target.Port = -1 }, errSubstr: "target.port"},
		{name: "zero max rows", mutate: func(c *Config) { c.Query.DefaultMaxRows = 0 }, errSubstr: "default_max_rows"},
		{name: "negative threshold", mutate: func(c *Config) { c.Query.ProgressThreshold = -1 }, errSubstr: "progress_threshold"},
		{name: "unknown transport", mutate: func(c *Config) { c.Server.Transport = "sse" }, errSubstr: "server.transport"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Server.MaxConcurrentCalls = 0 }, errSubstr: "max_concurrent_calls"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, errSubstr: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, errSubstr: "log.format"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "html" }, errSubstr: "unknown output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Validate_UnknownAdapterListsAvailable(t *testing.T) {
	cfg := validConfig()
	cfg.Target.Type = "invalid_db"

	err := cfg.Validate()
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Available, "postgres")
	assert.Contains(t, unknown.Available, "sqlite")
}

func TestConfig_Redacted(t *testing.T) {
	cfg := validConfig()
	cfg.Target.Password = "hunter2"
	cfg.Target.Options = map[string]string{"sslmode": "require", "password": "x"}

	red := cfg.Redacted()
	assert.Equal(t, redacted, red.Target.Password)
	assert.Equal(t, redacted, red.Target.Options["password"])
	assert.Equal(t, "require", red.Target.Options["sslmode"])
	// The original is untouched.
	assert.Equal(t, "hunter2", cfg.Target.Password)
	assert.Equal(t, "x", cfg.Target.Options["password"])
}

func TestTargetConfig_AdapterConfig(t *testing.T) {
	target := &TargetConfig{Type: "sqlite", Database: "aact.db", Schema: "main", Port: 1}
	ac := target.AdapterConfig()
	assert.Equal(t, "sqlite", ac.Type)
	assert.Equal(t, "aact.db", ac.Path)
	assert.Equal(t, "aact.db", ac.Database)
	assert.Equal(t, "main", ac.Schema)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("AACTMCP_TEST_HOST", "db.example.org")

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"${AACTMCP_TEST_HOST}", "db.example.org"},
		{"tcp://${AACTMCP_TEST_HOST}:5432", "tcp://db.example.org:5432"},
		{"${AACTMCP_TEST_UNSET_VAR}", ""},
		{"$AACTMCP_TEST_HOST", "$AACTMCP_TEST_HOST"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvVars(tt.in))
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "target.host", envKey("AACTMCP_TARGET__HOST"))
	assert.Equal(t, "query.default_max_rows", envKey("AACTMCP_QUERY__DEFAULT_MAX_ROWS"))
	assert.Equal(t, "output", envKey("AACTMCP_OUTPUT"))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetConfig(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := validConfig()
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, GetConfig(ctx))
}

func TestLoadConfig_SSLModeOnlyForPostgres(t *testing.T) {
	t.Run("postgres gets require", func(t *testing.T) {
		path := writeConfig(t, "target:\n  type: postgres\n")
		cfg, err := LoadConfig(path, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "require", cfg.Target.Options["sslmode"])
	})

	t.Run("explicit sslmode kept", func(t *testing.T) {
		path := writeConfig(t, "target:\n  options:\n    sslmode: disable\n")
		cfg, err := LoadConfig(path, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "disable", cfg.Target.Options["sslmode"])
	})

	t.Run("sqlite untouched", func(t *testing.T) {
		path := writeConfig(t, "target:\n  type: sqlite\n  database: ':memory:'\n")
		cfg, err := LoadConfig(path, "", nil)
		require.NoError(t, err)
		assert.NotContains(t, cfg.Target.Options, "sslmode")
	})
}
