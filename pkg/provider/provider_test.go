package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/provider"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

const (
	mainnetID = "CRDx2YkdtYtGZXGHZ59wNv1EwKHQndnRc1gT4p8i2vPX"
	devnetID  = "crdszSnZQu7j36KfsMJ4VEmMUTJgrNYXwoPVHUANpAu"
)

type assets struct {
	files map[string]string
	hits  atomic.Int32
}

func newAssets(t *testing.T, files map[string]string) (*assets, *httptest.Server) {
	t.Helper()
	a := &assets{files: map[string]string{}}
	for route, fixture := range files {
		data, err := os.ReadFile(filepath.Join("testdata", fixture))
		if err != nil {
			t.Fatalf("read fixture %s: %v", fixture, err)
		}
		a.files[route] = string(data)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.hits.Add(1)
		body, ok := a.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return a, srv
}

func newProvider(t *testing.T, srv *httptest.Server, network registry.Network) *provider.Provider {
	t.Helper()
	reg, err := registry.LoadFS(registry.EmbeddedFS(), "apps.json", registry.WithAssetBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return provider.New(
		provider.WithNetwork(network),
		provider.WithRegistry(reg),
		provider.WithHTTPClient(srv.Client()),
		provider.WithRequestTimeout(5*time.Second),
	)
}

func TestApps_CustomAppFirst(t *testing.T) {
	for _, network := range registry.Networks() {
		p := provider.New(provider.WithNetwork(network))
		apps := p.Apps()
		if len(apps) == 0 {
			t.Fatalf("%s: empty app list", network)
		}
		if !apps[0].IsNative() {
			t.Fatalf("%s: first app is %s, want custom app", network, apps[0].ID)
		}
		for _, app := range apps[1:] {
			if app.Network != network {
				t.Fatalf("%s: listed %s app %s", network, app.Network, app.ID)
			}
		}
	}
}

func TestNew_DefaultsToMainnet(t *testing.T) {
	p := provider.New()
	if p.Network() != registry.MainnetBeta {
		t.Fatalf("expected mainnet-beta, got %s", p.Network())
	}
	if _, ok := p.App(mainnetID); !ok {
		t.Fatalf("credix mainnet app missing")
	}
	if _, ok := p.App(devnetID); ok {
		t.Fatalf("devnet app must not resolve on mainnet")
	}
}

func TestResolveAppConfig_MergesDocuments(t *testing.T) {
	_, srv := newAssets(t, map[string]string{
		"/credix/ui.json":         "ui.json",
		"/credix/definition.json": "definition.json",
	})
	p := newProvider(t, srv, registry.MainnetBeta)

	cfg, err := p.ResolveAppConfig(context.Background(), mainnetID, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Definition == nil || cfg.Definition.ProgramName() != "sample" {
		t.Fatalf("expected sample definition, got %+v", cfg.Definition)
	}
	if len(cfg.UI) != 1 {
		t.Fatalf("expected one instruction, got %d", len(cfg.UI))
	}

	ix := cfg.UI[0]
	if ix.Name != "deposit" || ix.Label != "Deposit" || !ix.Type.IsConfig() {
		t.Fatalf("unexpected instruction header: %+v", ix)
	}
	gotAccounts := ix.Accounts()
	wantAccount := &model.Account{Index: 0, Name: "investor", IsSigner: true, IsWritable: true}
	if len(gotAccounts) != 1 {
		t.Fatalf("expected one account, got %d", len(gotAccounts))
	}
	if diff := cmp.Diff(wantAccount, gotAccounts[0]); diff != "" {
		t.Fatalf("account mismatch (-want +got):\n%s", diff)
	}
	args := ix.Args()
	if len(args) != 1 || args[0].DataType.String() != "u64" {
		t.Fatalf("expected u64 amount argument, got %+v", args)
	}
}

func TestResolveAppConfig_DefinitionWithTupleAndGenericTypes(t *testing.T) {
	_, srv := newAssets(t, map[string]string{
		"/credix/ui.json":         "ui.json",
		"/credix/definition.json": "definition_tuple.json",
	})
	p := newProvider(t, srv, registry.MainnetBeta)

	cfg, err := p.ResolveAppConfig(context.Background(), mainnetID, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Definition == nil || cfg.Definition.ProgramName() != "sample" {
		t.Fatalf("expected sample definition, got %+v", cfg.Definition)
	}
	if pair, ok := cfg.Definition.Type("Pair"); !ok || len(pair.Type.Tuple) != 2 {
		t.Fatalf("expected tuple struct Pair, got %+v", pair)
	}
	if len(cfg.UI) != 1 || cfg.UI[0].Name != "deposit" {
		t.Fatalf("expected merged deposit instruction, got %+v", cfg.UI)
	}
	accounts := cfg.UI[0].Accounts()
	if len(accounts) != 1 || !accounts[0].IsSigner || !accounts[0].IsWritable {
		t.Fatalf("unexpected account bindings %+v", accounts)
	}

	if lenient := p.AppConfig(context.Background(), mainnetID, "", ""); lenient == nil || len(lenient.UI) != 1 {
		t.Fatalf("lenient surface must return the merged config, got %+v", lenient)
	}
}

func TestResolveAppConfig_ExplicitURLsSkipRegistry(t *testing.T) {
	_, srv := newAssets(t, map[string]string{
		"/elsewhere/ui.json":  "ui.json",
		"/elsewhere/def.json": "definition.json",
	})
	p := newProvider(t, srv, registry.Devnet)

	unknown := "11111111111111111111111111111111"
	cfg, err := p.ResolveAppConfig(context.Background(), unknown, srv.URL+"/elsewhere/ui.json", srv.URL+"/elsewhere/def.json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(cfg.UI) != 1 || cfg.Definition == nil {
		t.Fatalf("expected merged config, got %+v", cfg)
	}
}

func TestResolveAppConfig_MissingDefinition(t *testing.T) {
	_, srv := newAssets(t, map[string]string{
		"/credix-devnet/ui.json": "ui.json",
	})
	p := newProvider(t, srv, registry.Devnet)

	cfg, err := p.ResolveAppConfig(context.Background(), devnetID, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Definition != nil {
		t.Fatalf("expected no definition, got %+v", cfg.Definition)
	}
	if cfg.UI == nil || len(cfg.UI) != 0 {
		t.Fatalf("expected empty non-nil instruction list, got %#v", cfg.UI)
	}
}

func TestResolveAppConfig_NativeApp(t *testing.T) {
	a, srv := newAssets(t, map[string]string{
		"/custom/ui.json": "custom_ui.json",
	})
	p := newProvider(t, srv, registry.Devnet)

	cfg, err := p.ResolveAppConfig(context.Background(), registry.NativeLoaderID, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Definition != nil {
		t.Fatalf("native app must not carry a definition")
	}
	if len(cfg.UI) != 1 || len(cfg.UI[0].UIElements) != 1 {
		t.Fatalf("expected one instruction with one element, got %+v", cfg.UI)
	}
	if el := cfg.UI[0].UIElements[0]; el.Name != "serializedTx" || el.DataElement != nil {
		t.Fatalf("unexpected native element: %+v", el)
	}
	if got := a.hits.Load(); got != 1 {
		t.Fatalf("native app should fetch the ui document only, got %d requests", got)
	}
}

func TestResolveAppConfig_NativeAppExplicitUI(t *testing.T) {
	a, srv := newAssets(t, map[string]string{
		"/uploads/custom.json": "custom_ui.json",
	})
	p := newProvider(t, srv, registry.MainnetBeta)

	cfg, err := p.ResolveAppConfig(context.Background(), registry.NativeLoaderID, srv.URL+"/uploads/custom.json", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Definition != nil || len(cfg.UI) != 1 {
		t.Fatalf("expected one native instruction without definition, got %+v", cfg)
	}
	if got := a.hits.Load(); got != 1 {
		t.Fatalf("expected only the explicit ui document to be fetched, got %d requests", got)
	}
}

func TestResolveAppConfig_NativeAppWithoutUI(t *testing.T) {
	_, srv := newAssets(t, nil)
	p := newProvider(t, srv, registry.MainnetBeta)

	cfg, err := p.ResolveAppConfig(context.Background(), registry.NativeLoaderID, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(cfg.UI) != 0 {
		t.Fatalf("expected empty ui, got %+v", cfg.UI)
	}
}

func TestResolveAppConfig_Errors(t *testing.T) {
	_, srv := newAssets(t, map[string]string{
		"/credix/ui.json":         "ui.json",
		"/credix/definition.json": "ui.json",
	})
	p := newProvider(t, srv, registry.MainnetBeta)

	_, err := p.ResolveAppConfig(context.Background(), devnetID, "", "")
	if !errors.Is(err, provider.ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound, got %v", err)
	}

	_, err = p.ResolveAppConfig(context.Background(), mainnetID, "", "")
	if err == nil || !strings.Contains(err.Error(), "idl: parse") {
		t.Fatalf("expected definition parse error, got %v", err)
	}
}

func TestAppConfig_NeverFails(t *testing.T) {
	_, srv := newAssets(t, nil)
	p := newProvider(t, srv, registry.MainnetBeta)

	if cfg := p.AppConfig(context.Background(), "unknown", "", ""); cfg != nil {
		t.Fatalf("expected nil for unknown app, got %+v", cfg)
	}

	srv.Close()
	if cfg := p.AppConfig(context.Background(), mainnetID, "", ""); cfg != nil {
		t.Fatalf("expected nil on transport failure, got %+v", cfg)
	}
}

func TestLogo_Sanitized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/credix/logo.svg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<svg viewBox="0 0 10 10"><script>alert(1)</script><path d="M0 0h10v10H0z"/></svg>`))
	}))
	t.Cleanup(srv.Close)
	p := newProvider(t, srv, registry.MainnetBeta)

	logo, err := p.Logo(context.Background(), mainnetID)
	if err != nil {
		t.Fatalf("logo: %v", err)
	}
	if strings.Contains(string(logo), "script") {
		t.Fatalf("script survived sanitising: %s", logo)
	}
	if !strings.Contains(string(logo), "<path") {
		t.Fatalf("expected path to survive, got %s", logo)
	}

	if _, err := p.Logo(context.Background(), devnetID); !errors.Is(err, provider.ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound, got %v", err)
	}
}
