package uischema_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

func TestLoadFS_Fixture(t *testing.T) {
	ixs, err := uischema.LoadFS(os.DirFS("testdata"), "credix_ui.json")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if len(ixs) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(ixs))
	}

	deposit := ixs[0]
	if !deposit.Type.IsFunc() || deposit.Type.FuncName != "deposit" {
		t.Fatalf("unexpected instruction type %+v", deposit.Type)
	}
	wantAmount := uischema.Type{Token: &uischema.TokenRef{InputID: "baseTokenMint"}}
	if diff := cmp.Diff(wantAmount, deposit.Args[0].Type); diff != "" {
		t.Fatalf("amount type mismatch (-want +got):\n%s", diff)
	}
	if deposit.Args[0].Visibility != uischema.VisibilityShow {
		t.Fatalf("empty visibility should normalise to show, got %q", deposit.Args[0].Visibility)
	}

	config := ixs[1]
	if !config.Type.IsConfig() {
		t.Fatalf("expected config instruction, got %+v", config.Type)
	}
	want := []uischema.Field{
		{Name: "memo", Label: "Memo", Type: uischema.Type{Func: "formatMemo"}, Visibility: uischema.VisibilityHide},
		{Name: "mint", Label: "Mint", Type: uischema.Type{Token: &uischema.TokenRef{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}}, Visibility: uischema.VisibilityShow},
	}
	if diff := cmp.Diff(want, config.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if config.Accounts[0].Value != "Owner111" || config.Accounts[0].Visibility != uischema.VisibilityReadOnly {
		t.Fatalf("unexpected account field %+v", config.Accounts[0])
	}
}

func TestParse_YAMLFallback(t *testing.T) {
	files := fstest.MapFS{
		"ui.yaml": &fstest.MapFile{Data: []byte(`
- name: withdraw
  label: Withdraw
  type:
    func:
      name: withdraw
  accounts:
    - name: investor
      type: txProposer
  args:
    - name: amount
      type:
        token:
          inputId: baseTokenMint
    - name: note
      type: inputText
      visibility: hide
`)},
	}

	ixs, err := uischema.LoadFS(files, "ui.yaml")
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if len(ixs) != 1 {
		t.Fatalf("expected one instruction, got %d", len(ixs))
	}
	ix := ixs[0]
	if ix.Type.FuncName != "withdraw" {
		t.Fatalf("unexpected type %+v", ix.Type)
	}
	if ix.Accounts[0].Type.Kind != uischema.KindTxProposer {
		t.Fatalf("unexpected account type %+v", ix.Accounts[0].Type)
	}
	if ix.Args[0].Type.Token == nil || ix.Args[0].Type.Token.InputID != "baseTokenMint" {
		t.Fatalf("unexpected token type %+v", ix.Args[0].Type)
	}
	if !ix.Args[1].Visibility.Hidden() {
		t.Fatalf("expected hidden note field")
	}
}

func TestParse_EmptyDocuments(t *testing.T) {
	for _, payload := range []string{"{}", "null", "[]"} {
		ixs, err := uischema.Parse([]byte(payload), "inline")
		if err != nil {
			t.Fatalf("parse %q: %v", payload, err)
		}
		if ixs == nil || len(ixs) != 0 {
			t.Fatalf("parse %q: expected empty non-nil list, got %#v", payload, ixs)
		}
	}

	if _, err := uischema.Parse([]byte("  "), "inline"); err == nil {
		t.Fatalf("expected error for blank document")
	}
	if _, err := uischema.Parse([]byte(`{"name":"x"}`), "inline"); err == nil {
		t.Fatalf("expected error for non-array document")
	}
}

func TestType_JSONForms(t *testing.T) {
	cases := map[string]uischema.Type{
		`"inputNumber"`:            uischema.KindType(uischema.KindInputNumber),
		`{"token":"Mint111"}`:      {Token: &uischema.TokenRef{Mint: "Mint111"}},
		`{"token":{"inputId":"m"}}`: {Token: &uischema.TokenRef{InputID: "m"}},
		`{"func":"pick"}`:          {Func: "pick"},
	}
	for raw, want := range cases {
		var got uischema.Type
		if err := json.Unmarshal([]byte(raw), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("type %s mismatch (-want +got):\n%s", raw, diff)
		}
		encoded, err := json.Marshal(got)
		if err != nil {
			t.Fatalf("marshal %s: %v", raw, err)
		}
		if string(encoded) != raw {
			t.Fatalf("re-encoded %s as %s", raw, encoded)
		}
	}

	var bad uischema.Type
	if err := json.Unmarshal([]byte(`{"other":1}`), &bad); err == nil {
		t.Fatalf("expected error for unknown type object")
	}
}

func TestSanitizeLogo(t *testing.T) {
	input := `  <svg viewBox="0 0 24 24" onload="steal()"><script>alert('x')</script><path d="M0 0h24v24H0z" /></svg>`
	got := uischema.SanitizeLogo(input)
	if got == "" {
		t.Fatalf("expected sanitized markup, got empty string")
	}
	if strings.Contains(got, "script") || strings.Contains(got, "onload") {
		t.Fatalf("expected script and handlers to be removed, got %q", got)
	}
	if !strings.Contains(got, "<svg") || !strings.Contains(got, "<path") {
		t.Fatalf("expected svg/path elements to remain, got %q", got)
	}
	if uischema.SanitizeLogo("   ") != "" {
		t.Fatalf("blank input should sanitize to empty")
	}
}
