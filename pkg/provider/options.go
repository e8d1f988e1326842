package provider

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/schema"
)

// Option customises a Provider.
type Option func(*Provider)

// WithNetwork selects the network whose apps the provider serves. Zero
// serves every network.
func WithNetwork(network registry.Network) Option {
	return func(p *Provider) {
		p.network = network
	}
}

// WithRegistry replaces the embedded registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(p *Provider) {
		p.registry = reg
	}
}

// WithLoader injects a document loader. HTTP options are ignored when a
// loader is supplied.
func WithLoader(loader schema.Loader) Option {
	return func(p *Provider) {
		p.loader = loader
	}
}

// WithHTTPClient sets the client used by the default loader.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.loaderOptions = append(p.loaderOptions, schema.WithHTTPClient(client))
	}
}

// WithRequestTimeout caps each remote fetch of the default loader.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		p.loaderOptions = append(p.loaderOptions, schema.WithRequestTimeout(timeout))
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}
