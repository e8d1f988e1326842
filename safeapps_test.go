package safeapps_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	safeapps "github.com/supersafe-org/go-safe-apps"
	"github.com/supersafe-org/go-safe-apps/pkg/provider"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

func TestApps_IncludeCustomApp(t *testing.T) {
	for _, network := range []safeapps.Network{safeapps.MainnetBeta, safeapps.Testnet, safeapps.Devnet} {
		apps := safeapps.Apps(network)
		if len(apps) == 0 || apps[0].ID != registry.NativeLoaderID {
			t.Fatalf("%s: expected custom app first, got %+v", network, apps)
		}
	}
}

func TestGetAppConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/custom/ui.json":
			_, _ = w.Write([]byte(`[{"name":"custom","args":[{"name":"tx","type":"inputTextArea"}]}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	reg := registry.MustDefault(registry.WithAssetBaseURL(srv.URL))
	cfg := safeapps.GetAppConfig(context.Background(), safeapps.Devnet, registry.NativeLoaderID,
		provider.WithRegistry(reg), provider.WithHTTPClient(srv.Client()))
	if cfg == nil {
		t.Fatalf("expected config")
	}
	if len(cfg.UI) != 1 || cfg.UI[0].UIElements[0].Name != "tx" {
		t.Fatalf("unexpected config %+v", cfg.UI)
	}

	if cfg := safeapps.GetAppConfig(context.Background(), safeapps.Devnet, "unknown",
		provider.WithRegistry(reg), provider.WithHTTPClient(srv.Client())); cfg != nil {
		t.Fatalf("expected nil for unknown app")
	}
}

func TestMergeDocuments_Native(t *testing.T) {
	ui, err := uischema.Parse([]byte(`[{"name":"custom","args":[{"name":"tx"}]}]`), "inline")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := safeapps.MergeDocuments(registry.NativeLoaderID, ui, nil)
	if len(got) != 1 || len(got[0].UIElements) != 1 || got[0].UIElements[0].DataElement != nil {
		t.Fatalf("unexpected native merge %+v", got)
	}
}
