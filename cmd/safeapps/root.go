package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/supersafe-org/go-safe-apps/internal/config"
	"github.com/supersafe-org/go-safe-apps/internal/logging"
	"github.com/supersafe-org/go-safe-apps/pkg/provider"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

// cli carries the flags shared by every command and the state resolved from
// them before a command runs.
type cli struct {
	configPath string
	network    string
	rpcURL     string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "safeapps",
		Short:         "Inspect multisig apps and build their instructions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "JSON or YAML config file")
	flags.StringVarP(&c.network, "network", "n", "", "network name or id (mainnet-beta, testnet, devnet)")
	flags.StringVar(&c.rpcURL, "rpc-url", "", "Solana JSON-RPC endpoint")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(
		appsCmd(c),
		configCmd(c),
		logoCmd(c),
		fillCmd(c),
		credixCmd(c),
	)
	return rootCmd
}

func (c *cli) init() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.network != "" {
		network, err := registry.ParseNetwork(c.network)
		if err != nil {
			return err
		}
		cfg.Network = network
	}
	if c.rpcURL != "" {
		cfg.RPCURL = c.rpcURL
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.LogFormat = c.logFormat
	}

	c.cfg = cfg
	c.logger = logging.New(cfg.LogLevel, cfg.LogFormat)
	c.logger.Debug().
		Str("network", cfg.Network.String()).
		Str("rpc", cfg.Endpoint()).
		Msg("configuration loaded")
	return nil
}

func (c *cli) registry() (*registry.Registry, error) {
	var opts []registry.Option
	if c.cfg.AssetBaseURL != "" {
		opts = append(opts, registry.WithAssetBaseURL(c.cfg.AssetBaseURL))
	}
	if c.cfg.Registry != "" {
		return registry.LoadFile(c.cfg.Registry, opts...)
	}
	return registry.Default(opts...)
}

func (c *cli) provider() (*provider.Provider, error) {
	reg, err := c.registry()
	if err != nil {
		return nil, err
	}
	return provider.New(
		provider.WithNetwork(c.cfg.Network),
		provider.WithRegistry(reg),
		provider.WithRequestTimeout(c.cfg.RequestTimeout()),
		provider.WithLogger(c.logger),
	), nil
}
