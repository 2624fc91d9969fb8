package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// configFiles are searched in the working directory, in order.
var configFiles = []string{"aactmcp.yaml", "aactmcp.yml"}

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// command options and never reach the config.
var flagKeys = map[string]string{
	"verbose":     "verbose",
	"output":      "output",
	"schema-path": "schema_path",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"transport":   "server.transport",
	"addr":        "server.addr",
	"read-only":   "query.read_only_tx",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Loader loads configuration. It remembers which files it used.
type Loader struct {
	k              *koanf.Koanf
	configFileUsed string
	envFileUsed    string
}

// NewLoader returns a loader with an empty koanf instance.
func NewLoader() *Loader {
	return &Loader{k: koanf.New(".")}
}

// ConfigFileUsed returns the config file that was loaded, if any.
func (l *Loader) ConfigFileUsed() string { return l.configFileUsed }

// EnvFileUsed returns the dotenv file that was loaded, if any.
func (l *Loader) EnvFileUsed() string { return l.envFileUsed }

// Defaults returns the default configuration as a flat key map.
func Defaults() map[string]any {
	return map[string]any{
		"target.type":                 DefaultTargetType,
		"target.host":                 DefaultHost,
		"target.port":                 DefaultPort,
		"target.database":             DefaultDatabase,
		"target.user":                 DefaultUser,
		"target.password":             DefaultPassword,
		"target.schema":               DefaultSchema,
		"schema_path":                 DefaultSchemaPath,
		"log.level":                   DefaultLogLevel,
		"log.format":                  DefaultLogFormat,
		"server.name":                 "AACT Clinical Trials Database",
		"server.transport":            DefaultTransport,
		"server.addr":                 DefaultAddr,
		"server.max_concurrent_calls": DefaultMaxConcurrency,
		"query.default_max_rows":      DefaultMaxRows,
		"query.progress_threshold":    DefaultProgressRows,
		"query.read_only_tx":          false,
		"output":                      DefaultOutput,
		"verbose":                     false,
	}
}

// LoadConfig loads configuration from defaults, file, dotenv, environment
// variables and flags, then validates it.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults
func LoadConfig(cfgFile, envFile string, flags *pflag.FlagSet) (*Config, error) {
	return NewLoader().Load(cfgFile, envFile, flags)
}

// Load performs the layered load described on LoadConfig.
func (l *Loader) Load(cfgFile, envFile string, flags *pflag.FlagSet) (*Config, error) {
	// 1. Defaults
	if err := l.k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	l.configFileUsed = findConfigFile(cfgFile)
	if l.configFileUsed != "" {
		if err := l.k.Load(file.Provider(l.configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", l.configFileUsed, err)
		}
	}

	// 3. Dotenv file; never overrides variables already set
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
			}
		} else {
			l.envFileUsed = envFile
		}
	}

	// 4. Environment variables: AACTMCP_TARGET__HOST -> target.host
	if err := l.k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags explicitly set on the command line
	if flags != nil {
		if err := l.k.Load(posflag.ProviderWithFlag(flags, ".", l.k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Decode
	var cfg Config
	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	expandTargetEnvVars(cfg.Target)
	defaultSSLMode(cfg.Target)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey turns AACTMCP_QUERY__DEFAULT_MAX_ROWS into query.default_max_rows.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// findConfigFile finds the config file to use.
// Priority: explicit path > aactmcp.yaml > aactmcp.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// expandTargetEnvVars expands environment variables in target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.User = expandEnvVars(t.User)
	t.Password = expandEnvVars(t.Password)
	t.Schema = expandEnvVars(t.Schema)
	for k, v := range t.Options {
		t.Options[k] = expandEnvVars(v)
	}
}

// defaultSSLMode requires TLS for postgres targets unless configured otherwise.
func defaultSSLMode(t *TargetConfig) {
	if t == nil || !strings.EqualFold(t.Type, "postgres") {
		return
	}
	if t.Options == nil {
		t.Options = make(map[string]string)
	}
	if _, ok := t.Options["sslmode"]; !ok {
		t.Options["sslmode"] = DefaultSSLMode
	}
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context.
// It returns nil when none was stored.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
