package registry_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

func TestDefault_ResolvesAssetURLs(t *testing.T) {
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	if reg.Len() == 0 {
		t.Fatalf("expected embedded registry to hold apps")
	}

	app, ok := reg.Lookup("CRDx2YkdtYtGZXGHZ59wNv1EwKHQndnRc1gT4p8i2vPX", registry.MainnetBeta)
	if !ok {
		t.Fatalf("credix mainnet entry missing")
	}

	want := registry.App{
		ID:      "CRDx2YkdtYtGZXGHZ59wNv1EwKHQndnRc1gT4p8i2vPX",
		Name:    "Credix",
		Network: registry.MainnetBeta,
		Folder:  "credix",
		Active:  true,
		LogoURI: registry.MainnetBaseURL + "/credix/logo.svg",
		UIURL:   registry.MainnetBaseURL + "/credix/ui.json",
		DefURL:  registry.MainnetBaseURL + "/credix/definition.json",
	}
	if diff := cmp.Diff(want, app); diff != "" {
		t.Fatalf("app mismatch (-want +got):\n%s", diff)
	}
}

func TestApps_FiltersByNetwork(t *testing.T) {
	reg := registry.MustDefault()

	for _, app := range reg.Apps(registry.Devnet) {
		if app.Network != registry.Devnet {
			t.Fatalf("devnet listing returned %s app %s", app.Network, app.ID)
		}
	}
	if got := len(reg.Apps(0)); got != reg.Len() {
		t.Fatalf("zero network should list all apps, got %d of %d", got, reg.Len())
	}
	if _, ok := reg.Lookup("CRDx2YkdtYtGZXGHZ59wNv1EwKHQndnRc1gT4p8i2vPX", registry.Devnet); ok {
		t.Fatalf("mainnet app must not resolve on devnet")
	}
}

func TestCustomApp(t *testing.T) {
	reg := registry.MustDefault(registry.WithAssetBaseURL("https://assets.test/apps/"))

	app := reg.CustomApp(0)
	want := registry.App{
		ID:      registry.NativeLoaderID,
		Name:    "Custom Transaction",
		Network: registry.Devnet,
		Folder:  "custom",
		Active:  true,
		LogoURI: "https://assets.test/apps/custom/logo.svg",
		UIURL:   "https://assets.test/apps/custom/ui.json",
	}
	if diff := cmp.Diff(want, app); diff != "" {
		t.Fatalf("custom app mismatch (-want +got):\n%s", diff)
	}
	if !app.IsNative() {
		t.Fatalf("custom app must report native")
	}

	looked, ok := reg.Lookup(registry.NativeLoaderID, registry.Testnet)
	if !ok || looked.Network != registry.Testnet {
		t.Fatalf("custom app lookup on testnet: %+v ok=%v", looked, ok)
	}
}

func TestParse_YAMLAndNetworkNames(t *testing.T) {
	files := fstest.MapFS{
		"apps.yaml": &fstest.MapFile{Data: []byte(`
apps:
  - id: Prog111
    name: Demo
    network: devnet
    folder: demo
    active: false
`)},
	}

	reg, err := registry.LoadFS(files, "apps.yaml", registry.WithBaseURL("https://dev.test"), registry.WithMainnetBaseURL("https://main.test"))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	app, ok := reg.Lookup("Prog111", 0)
	if !ok {
		t.Fatalf("yaml app missing")
	}
	if app.Network != registry.Devnet || app.UIURL != "https://dev.test/demo/ui.json" || app.Active {
		t.Fatalf("unexpected app %+v", app)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":     "   ",
		"no id":     `{"apps":[{"network":101,"folder":"x"}]}`,
		"bad net":   `{"apps":[{"id":"a","network":7,"folder":"x"}]}`,
		"no folder": `{"apps":[{"id":"a","network":101}]}`,
		"duplicate": `{"apps":[{"id":"a","network":101,"folder":"x"},{"id":"a","network":101,"folder":"y"}]}`,
		"garbage":   `{{{`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := registry.Parse([]byte(payload), "inline")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), "registry: ") {
				t.Fatalf("error should carry package prefix: %v", err)
			}
		})
	}
}

func TestParseNetwork(t *testing.T) {
	cases := map[string]registry.Network{
		"mainnet-beta": registry.MainnetBeta,
		"Mainnet":      registry.MainnetBeta,
		"102":          registry.Testnet,
		" devnet ":     registry.Devnet,
	}
	for in, want := range cases {
		got, err := registry.ParseNetwork(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %s got %s", in, want, got)
		}
	}
	if _, err := registry.ParseNetwork("localnet"); err == nil {
		t.Fatalf("expected error for unknown network")
	}
}
