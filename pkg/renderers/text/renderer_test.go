package text

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

func sampleConfig() *model.AppConfig {
	vec := idl.Type{Vec: &idl.Type{Primitive: idl.U8}}
	return &model.AppConfig{
		Definition: &idl.IDL{Name: "credix"},
		UI: []model.Instruction{{
			ID:    "8ULp3dWcFWZ2mm1ffVkPrZ1GxGkHbmKCvJbZa9zZzYQw",
			Name:  "depositFunds",
			Label: "Deposit",
			Help:  "  Deposit into the liquidity pool  ",
			UIElements: []model.UIElement{
				{
					Name:        "investor",
					Label:       "Investor",
					Type:        uischema.KindType(uischema.KindTxProposer),
					Visibility:  uischema.VisibilityShow,
					DataElement: &model.Account{Index: 0, Name: "investor", IsSigner: true, IsWritable: true},
				},
				{
					Name:        "memo",
					Type:        uischema.KindType(uischema.KindInputText),
					Visibility:  uischema.VisibilityHide,
					DataElement: &model.Arg{Index: 0, Name: "memo", DataType: model.IDLType(vec), DataValue: "x<y"},
				},
			},
		}},
	}
}

func TestRenderAppConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := New().RenderAppConfig(&buf, sampleConfig()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"program: credix",
		"Deposit (depositFunds) 8ULp…zYQw",
		"  Deposit into the liquidity pool\n",
		"  - Investor [txProposer] -> account #0 (signer, writable)",
		"  - memo [inputText] -> arg #0 vec<u8> = x<y (hidden)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderAppConfig_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := New().RenderAppConfig(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "no instructions") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderApps(t *testing.T) {
	reg := registry.MustDefault()
	apps := append([]registry.App{reg.CustomApp(registry.Devnet)}, reg.Apps(registry.Devnet)...)
	apps[0].Active = false

	var buf bytes.Buffer
	if err := New().RenderApps(&buf, apps); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(apps) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(apps), len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Custom Transaction\tNati…1111\tdevnet\tinactive") {
		t.Fatalf("unexpected custom app line %q", lines[0])
	}
}

func TestWithTemplatesFS(t *testing.T) {
	files := fstest.MapFS{
		"instruction.tpl": {Data: []byte(`{{ ix.name }}:{{ ix.elements|length }}`)},
	}
	var buf bytes.Buffer
	r := New(WithTemplatesFS(files))
	if err := r.RenderInstruction(&buf, sampleConfig().UI[0]); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "depositFunds:2" {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if err := r.RenderApps(&buf, nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}
