package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/supersafe-org/go-safe-apps/internal/loader"
	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/merge"
	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/schema"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

// ErrAppNotFound reports an app id unknown to the registry on the provider
// network.
var ErrAppNotFound = errors.New("provider: app not found")

// Provider resolves app configurations for one network. It holds
// configuration only and is safe for concurrent use.
type Provider struct {
	network       registry.Network
	registry      *registry.Registry
	loader        schema.Loader
	loaderOptions []schema.LoaderOption
	logger        zerolog.Logger
}

// New constructs a Provider. Without options it serves mainnet-beta from the
// embedded registry over plain HTTP.
func New(options ...Option) *Provider {
	p := &Provider{
		network: registry.MainnetBeta,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.registry == nil {
		p.registry = registry.MustDefault()
	}
	if p.loader == nil {
		p.loader = loader.New(schema.NewLoaderOptions(p.loaderOptions...))
	}
	p.logger = p.logger.With().Str("component", "provider").Logger()
	return p
}

// Network reports the network the provider serves.
func (p *Provider) Network() registry.Network {
	return p.network
}

// Registry exposes the registry backing the provider.
func (p *Provider) Registry() *registry.Registry {
	return p.registry
}

// Apps lists the custom transaction app followed by the registered apps of
// the provider network.
func (p *Provider) Apps() []registry.App {
	registered := p.registry.Apps(p.network)
	out := make([]registry.App, 0, len(registered)+1)
	out = append(out, p.registry.CustomApp(p.network))
	return append(out, registered...)
}

// App looks up id on the provider network.
func (p *Provider) App(id string) (registry.App, bool) {
	return p.registry.Lookup(id, p.network)
}

// AppConfig fetches and merges the documents of appID. Empty URLs are taken
// from the registry. It returns nil when the app is unknown or any fetch
// fails; the cause is logged.
func (p *Provider) AppConfig(ctx context.Context, appID, uiURL, defURL string) *model.AppConfig {
	cfg, err := p.ResolveAppConfig(ctx, appID, uiURL, defURL)
	if err != nil {
		p.logger.Error().Err(err).Str("app", appID).Msg("resolve app config")
		return nil
	}
	return cfg
}

// ResolveAppConfig is AppConfig with errors surfaced. A non-2xx response for
// either document is not an error: the document is treated as absent.
func (p *Provider) ResolveAppConfig(ctx context.Context, appID, uiURL, defURL string) (*model.AppConfig, error) {
	if appID == "" {
		return nil, errors.New("provider: app id is required")
	}

	native := registry.IsNative(appID)
	// The native app publishes no definition, so an explicit UI URL is enough
	// to skip the registry for it.
	if uiURL == "" || (defURL == "" && !native) {
		app, ok := p.App(appID)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrAppNotFound, appID, p.network)
		}
		if uiURL == "" {
			uiURL = app.UIURL
		}
		if defURL == "" {
			defURL = app.DefURL
		}
	}

	logger := p.logger.With().Str("app", appID).Logger()

	if native {
		ui, err := p.fetchUI(ctx, uiURL)
		if err != nil {
			return nil, err
		}
		return &model.AppConfig{
			UI: merge.Merge(appID, ui, nil, merge.WithLogger(logger)),
		}, nil
	}

	var (
		ui  []uischema.Instruction
		def *idl.IDL
	)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		ui, err = p.fetchUI(gctx, uiURL)
		return err
	})
	group.Go(func() error {
		var err error
		def, err = p.fetchDefinition(gctx, defURL)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if def == nil {
		logger.Warn().Str("url", defURL).Msg("program definition unavailable")
	}

	return &model.AppConfig{
		UI:         merge.Merge(appID, ui, def, merge.WithLogger(logger)),
		Definition: def,
	}, nil
}

// Logo fetches the logo of appID and strips anything but inert SVG markup.
func (p *Provider) Logo(ctx context.Context, appID string) ([]byte, error) {
	app, ok := p.App(appID)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrAppNotFound, appID, p.network)
	}
	doc, err := p.fetch(ctx, app.LogoURI)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("provider: logo of %s not published", appID)
	}
	return []byte(uischema.SanitizeLogo(string(doc.Raw()))), nil
}

func (p *Provider) fetchUI(ctx context.Context, url string) ([]uischema.Instruction, error) {
	doc, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []uischema.Instruction{}, nil
	}
	ui, err := uischema.ParseDocument(*doc)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	return ui, nil
}

func (p *Provider) fetchDefinition(ctx context.Context, url string) (*idl.IDL, error) {
	if url == "" {
		return nil, nil
	}
	doc, err := p.fetch(ctx, url)
	if err != nil || doc == nil {
		return nil, err
	}
	def, err := idl.ParseDocument(*doc)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	return def, nil
}

// fetch loads url. A nil document with a nil error means the server answered
// with a non-2xx status.
func (p *Provider) fetch(ctx context.Context, url string) (*schema.Document, error) {
	src, err := schema.ParseSource(url)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	doc, err := p.loader.Load(ctx, src)
	if err != nil {
		var status *loader.StatusError
		if errors.As(err, &status) {
			p.logger.Debug().Str("url", url).Int("status", status.StatusCode).Msg("document absent")
			return nil, nil
		}
		return nil, fmt.Errorf("provider: fetch %s: %w", url, err)
	}
	return &doc, nil
}
