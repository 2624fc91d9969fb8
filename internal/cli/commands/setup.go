package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/catalog"
	"github.com/leapstack-labs/aactmcp/internal/cli/config"
	"github.com/leapstack-labs/aactmcp/internal/cli/output"
	"github.com/leapstack-labs/aactmcp/internal/gateway"
	"github.com/leapstack-labs/aactmcp/pkg/adapter"
)

var errNoConfig = errors.New("configuration not loaded")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config and logger stored on the command context.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.GetConfig(cmd.Context())
	if cfg == nil {
		return nil, errNoConfig
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.Output)),
	}, nil
}

// OpenStore returns a lazily connecting adapter for the configured target.
// Nothing is dialed until the first query.
func (c *CommandContext) OpenStore() (adapter.Adapter, error) {
	ac := c.Cfg.Target.AdapterConfig()
	inner, err := adapter.NewAdapter(ac, c.Logger)
	if err != nil {
		return nil, err
	}
	return adapter.NewLazy(inner, ac, c.Logger), nil
}

// NewGateway binds a gateway to store, governed by the configured schema.
func (c *CommandContext) NewGateway(store adapter.Adapter) *gateway.Gateway {
	schema := gateway.GovernedSchema(c.Cfg.Target.Schema, store.Dialect(), c.Cfg.Target.Database)
	return gateway.New(store, schema,
		gateway.WithReadOnlyTx(c.Cfg.Query.ReadOnlyTx),
		gateway.WithLogger(c.Logger),
	)
}

// OpenGateway opens the store and binds a gateway to it.
// The returned cleanup closes the store.
func (c *CommandContext) OpenGateway() (*gateway.Gateway, func(), error) {
	store, err := c.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("failed to close database", slog.Any("error", err))
		}
	}
	return c.NewGateway(store), cleanup, nil
}

// LoadCatalog loads the schema catalog from the configured path.
func (c *CommandContext) LoadCatalog() *catalog.Catalog {
	return catalog.Load(c.Cfg.SchemaPath, c.Logger)
}
