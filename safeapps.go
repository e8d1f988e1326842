package safeapps

import (
	"context"

	"github.com/supersafe-org/go-safe-apps/internal/loader"
	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/merge"
	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/provider"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/schema"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

// Network aliases registry.Network for callers that only import the root
// package.
type Network = registry.Network

const (
	MainnetBeta = registry.MainnetBeta
	Testnet     = registry.Testnet
	Devnet      = registry.Devnet
)

// AppConfig aliases the merged app configuration.
type AppConfig = model.AppConfig

// NewProvider exposes the provider constructor from the top-level module.
func NewProvider(options ...provider.Option) *provider.Provider {
	return provider.New(options...)
}

// NewLoader returns the default document loader configured with options.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// Apps lists the apps available on network, custom transaction app first.
func Apps(network Network) []registry.App {
	return provider.New(provider.WithNetwork(network)).Apps()
}

// GetAppConfig fetches and merges the documents of appID on network. It
// returns nil when the app is unknown or a fetch fails.
func GetAppConfig(ctx context.Context, network Network, appID string, options ...provider.Option) *AppConfig {
	options = append([]provider.Option{provider.WithNetwork(network)}, options...)
	return provider.New(options...).AppConfig(ctx, appID, "", "")
}

// MergeDocuments merges already loaded documents without any fetching.
func MergeDocuments(programID string, ui []uischema.Instruction, def *idl.IDL) []model.Instruction {
	return merge.Merge(programID, ui, def)
}
