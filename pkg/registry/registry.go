package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options controls how asset URLs are derived from an entry's folder.
type Options struct {
	// BaseURL hosts the assets of every network except mainnet-beta.
	BaseURL string
	// MainnetBaseURL hosts the mainnet-beta assets.
	MainnetBaseURL string
}

// Option mutates Options.
type Option func(*Options)

// WithBaseURL overrides the asset host used for non-mainnet apps.
func WithBaseURL(base string) Option {
	return func(o *Options) {
		o.BaseURL = base
	}
}

// WithMainnetBaseURL overrides the asset host used for mainnet-beta apps.
func WithMainnetBaseURL(base string) Option {
	return func(o *Options) {
		o.MainnetBaseURL = base
	}
}

// WithAssetBaseURL points both hosts at the same location, handy for tests
// and self-hosted mirrors.
func WithAssetBaseURL(base string) Option {
	return func(o *Options) {
		o.BaseURL = base
		o.MainnetBaseURL = base
	}
}

func newOptions(opts ...Option) Options {
	cfg := Options{BaseURL: DefaultBaseURL, MainnetBaseURL: MainnetBaseURL}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Registry is the immutable program list.
type Registry struct {
	opts Options
	apps []App
}

type documentFile struct {
	Apps []entryFile `json:"apps" yaml:"apps"`
}

type entryFile struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Network Network `json:"network" yaml:"network"`
	Folder  string  `json:"folder" yaml:"folder"`
	Active  bool    `json:"active" yaml:"active"`
}

// Default returns the registry built from the embedded apps.json.
func Default(opts ...Option) (*Registry, error) {
	return LoadFS(EmbeddedFS(), "apps.json", opts...)
}

// MustDefault panics if the embedded registry cannot be parsed.
func MustDefault(opts ...Option) *Registry {
	reg, err := Default(opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

// LoadFile reads a JSON or YAML registry from disk.
func LoadFile(path string, opts ...Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return Parse(data, path, opts...)
}

// LoadFS reads a JSON or YAML registry from fsys.
func LoadFS(fsys fs.FS, name string, opts ...Option) (*Registry, error) {
	if fsys == nil {
		return nil, errors.New("registry: fs is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", name, err)
	}
	return Parse(data, name, opts...)
}

// Parse decodes a registry document. JSON is tried first, then YAML.
func Parse(data []byte, source string, opts ...Option) (*Registry, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("registry: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("registry: parse %s: invalid JSON or YAML", source)
		}
	}

	cfg := newOptions(opts...)
	reg := &Registry{opts: cfg, apps: make([]App, 0, len(doc.Apps))}
	seen := make(map[string]struct{}, len(doc.Apps))
	for idx, entry := range doc.Apps {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("registry: file %s entry %d has an empty id", source, idx)
		}
		if !entry.Network.Valid() {
			return nil, fmt.Errorf("registry: file %s app %q has unknown network %d", source, id, int(entry.Network))
		}
		if strings.TrimSpace(entry.Folder) == "" {
			return nil, fmt.Errorf("registry: file %s app %q has an empty folder", source, id)
		}
		key := entry.Network.String() + "/" + id
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("registry: file %s defines app %q twice on %s", source, id, entry.Network)
		}
		seen[key] = struct{}{}

		reg.apps = append(reg.apps, reg.resolve(id, entry.Name, entry.Network, entry.Folder, entry.Active, true))
	}

	return reg, nil
}

func (r *Registry) base(network Network) string {
	if network == MainnetBeta {
		return r.opts.MainnetBaseURL
	}
	return r.opts.BaseURL
}

func (r *Registry) resolve(id, name string, network Network, folder string, active, withDefinition bool) App {
	base := r.base(network)
	app := App{
		ID:      id,
		Name:    name,
		Network: network,
		Folder:  folder,
		Active:  active,
		LogoURI: assetURL(base, folder, "logo.svg"),
		UIURL:   assetURL(base, folder, "ui.json"),
	}
	if withDefinition {
		app.DefURL = assetURL(base, folder, "definition.json")
	}
	return app
}

// CustomApp returns the synthetic "Custom Transaction" entry for network.
// A zero network is reported as devnet.
func (r *Registry) CustomApp(network Network) App {
	if network == 0 {
		network = Devnet
	}
	return r.resolve(NativeLoaderID, customName, network, customFolder, true, false)
}

// Apps returns the registered entries for network, in file order. A zero
// network returns every entry.
func (r *Registry) Apps(network Network) []App {
	if r == nil {
		return nil
	}
	out := make([]App, 0, len(r.apps))
	for _, app := range r.apps {
		if network != 0 && app.Network != network {
			continue
		}
		out = append(out, app)
	}
	return out
}

// Lookup finds an app by id within network (any network when zero). The
// custom app is resolved as well.
func (r *Registry) Lookup(id string, network Network) (App, bool) {
	if r == nil {
		return App{}, false
	}
	if IsNative(id) {
		return r.CustomApp(network), true
	}
	for _, app := range r.apps {
		if app.ID != id {
			continue
		}
		if network != 0 && app.Network != network {
			continue
		}
		return app, true
	}
	return App{}, false
}

// Len reports how many entries the registry holds, excluding the custom app.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.apps)
}
