package merge_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/go-cmp/cmp"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/merge"
	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/testsupport"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

const programID = "CRDx2YkdtYtGZXGHZ59wNv1EwKHQndnRc1gT4p8i2vPX"

func loadIDL(t *testing.T, name string) *idl.IDL {
	t.Helper()
	return testsupport.LoadIDL(t, filepath.Join("testdata", name))
}

func parseUI(t *testing.T, raw string) []uischema.Instruction {
	t.Helper()
	return testsupport.ParseUI(t, raw)
}

func instructionID(t *testing.T, program, name string) string {
	t.Helper()
	id, err := merge.InstructionID(solana.MustPublicKeyFromBase58(program), name)
	if err != nil {
		t.Fatalf("instruction id: %v", err)
	}
	return id.String()
}

func TestMerge_DepositSample(t *testing.T) {
	ui := parseUI(t, `[{"name":"deposit","accounts":[{"name":"investor"}],"args":[{"name":"amount"}]}]`)
	def := loadIDL(t, "deposit_idl.json")

	got := merge.Merge(programID, ui, def)

	want := []model.Instruction{{
		ID:   instructionID(t, programID, "deposit"),
		Name: "deposit",
		UIElements: []model.UIElement{
			{
				Name:        "investor",
				Visibility:  uischema.VisibilityShow,
				DataElement: &model.Account{Index: 0, Name: "investor", IsSigner: true, IsWritable: true},
			},
			{
				Name:        "amount",
				Visibility:  uischema.VisibilityShow,
				DataElement: &model.Arg{Index: 0, Name: "amount", DataType: model.IDLType(idl.PrimitiveType(idl.U64))},
			},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	if got[0].Args()[0].DataType.String() != "u64" {
		t.Fatalf("expected u64 data type, got %s", got[0].Args()[0].DataType)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	ui := parseUI(t, `[{"name":"deposit","label":"Deposit","accounts":[{"name":"investor","type":"txProposer"}],"args":[{"name":"amount","type":{"token":{"inputId":"mint"}}}]}]`)
	def := loadIDL(t, "deposit_idl.json")

	first := merge.Merge(programID, ui, def)
	second := merge.Merge(programID, ui, def)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("merge is not idempotent (-first +second):\n%s", diff)
	}
}

func TestMerge_SkipsUnmatchedInstruction(t *testing.T) {
	ui := parseUI(t, `[
		{"name":"unknown","accounts":[{"name":"investor"}],"args":[]},
		{"name":"deposit","accounts":[{"name":"investor"}],"args":[]}
	]`)
	got := merge.Merge(programID, ui, loadIDL(t, "deposit_idl.json"))
	if len(got) != 1 || got[0].Name != "deposit" {
		t.Fatalf("expected only deposit, got %+v", got)
	}
}

func TestMerge_AccountIndicesCountMatchedOnly(t *testing.T) {
	def := &idl.IDL{Instructions: []idl.Instruction{{
		Name: "withdraw",
		Accounts: []idl.AccountItem{
			{Name: "investor", IsMut: true, IsSigner: true},
			{Name: "market"},
			{Name: "vault", IsMut: true},
		},
	}}}
	ui := parseUI(t, `[{"name":"withdraw","accounts":[
		{"name":"vault"},{"name":"ghost"},{"name":"investor"},{"name":"market"}
	],"args":[]}]`)

	got := merge.Merge(programID, ui, def)
	if len(got) != 1 {
		t.Fatalf("expected one instruction, got %d", len(got))
	}
	want := []*model.Account{
		{Index: 0, Name: "vault", IsWritable: true},
		{Index: 1, Name: "investor", IsWritable: true, IsSigner: true},
		{Index: 2, Name: "market"},
	}
	if diff := cmp.Diff(want, got[0].Accounts()); diff != "" {
		t.Fatalf("account bindings mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got[0].Element("ghost"); ok {
		t.Fatalf("unmatched account must be dropped")
	}
}

func TestMerge_AllowUnmatched(t *testing.T) {
	ui := parseUI(t, `[{"name":"memo","allowUnmatchedIxName":true,
		"accounts":[{"name":"signer"},{"name":"payer"}],
		"args":[{"name":"payer"},{"name":"text","type":"inputTextArea"},{"name":"count","type":"inputNumber"}]}]`)

	got := merge.Merge(programID, ui, nil)
	if len(got) != 1 {
		t.Fatalf("expected the unmatched instruction to be kept, got %d", len(got))
	}

	want := []model.DataElement{
		&model.Account{Index: 0, Name: "signer"},
		&model.Account{Index: 1, Name: "payer"},
		&model.Arg{Index: 0, Name: "text", DataType: model.UIType(uischema.KindType(uischema.KindInputTextArea))},
		&model.Arg{Index: 1, Name: "count", DataType: model.UIType(uischema.KindType(uischema.KindInputNumber))},
	}
	var bindings []model.DataElement
	for _, el := range got[0].UIElements {
		bindings = append(bindings, el.DataElement)
	}
	if diff := cmp.Diff(want, bindings); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ArgFallsBackToUIType(t *testing.T) {
	ui := parseUI(t, `[{"name":"deposit","accounts":[],"args":[{"name":"amount","type":"inputNumber"},{"name":"note","type":"inputText"}]}]`)
	got := merge.Merge(programID, ui, loadIDL(t, "deposit_idl.json"))

	args := got[0].Args()
	if len(args) != 2 {
		t.Fatalf("expected two args, got %d", len(args))
	}
	if args[0].DataType.IDL == nil || args[0].DataType.String() != "u64" {
		t.Fatalf("matched arg should carry the definition type, got %+v", args[0].DataType)
	}
	if args[1].Index != 1 || args[1].DataType.UI == nil || args[1].DataType.String() != uischema.KindInputText {
		t.Fatalf("unmatched arg should carry the ui type, got %+v", args[1])
	}
}

func TestMerge_Native(t *testing.T) {
	ui := parseUI(t, `[
		{"name":"custom","label":"Custom","accounts":[{"name":"ignored"}],"args":[{"name":"serialized","label":"Transaction","type":"inputTextArea","visibility":"show"},{"name":"extra"}]},
		{"name":"second","args":[{"name":"other"}]}
	]`)

	got := merge.Merge(registry.NativeLoaderID, ui, nil)
	if len(got) != 1 {
		t.Fatalf("native merge must emit at most one instruction, got %d", len(got))
	}
	if len(got[0].UIElements) != 1 {
		t.Fatalf("native merge must emit one element, got %d", len(got[0].UIElements))
	}
	el := got[0].UIElements[0]
	if el.Name != "serialized" || el.DataElement != nil {
		t.Fatalf("unexpected native element %+v", el)
	}
	if got[0].ID != instructionID(t, registry.NativeLoaderID, "custom") {
		t.Fatalf("unexpected native instruction id %s", got[0].ID)
	}

	empty := merge.Merge(registry.NativeLoaderID, parseUI(t, `[{"name":"custom","args":[]}]`), nil)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("native merge without args must be an empty list, got %#v", empty)
	}
}

func TestMerge_InvalidProgramID(t *testing.T) {
	ui := parseUI(t, `[{"name":"deposit","args":[]}]`)

	got := merge.Merge("not-a-key", ui, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %#v", got)
	}
	if _, err := merge.MergeStrict("not-a-key", ui, nil); err == nil || !strings.HasPrefix(err.Error(), "merge: ") {
		t.Fatalf("expected prefixed error, got %v", err)
	}
}

func TestInstructionID_LongNames(t *testing.T) {
	program := solana.MustPublicKeyFromBase58(programID)
	long := strings.Repeat("a", 64)

	first, err := merge.InstructionID(program, long)
	if err != nil {
		t.Fatalf("long name: %v", err)
	}
	second, err := merge.InstructionID(program, long)
	if err != nil {
		t.Fatalf("long name: %v", err)
	}
	if !first.Equals(second) {
		t.Fatalf("instruction id must be deterministic")
	}
	short, _ := merge.InstructionID(program, "deposit")
	if short.Equals(first) {
		t.Fatalf("different names must not collide")
	}
}

func TestMerge_JSONShape(t *testing.T) {
	ui := parseUI(t, `[{"name":"deposit","accounts":[{"name":"investor"}],"args":[{"name":"amount"}]}]`)
	got := merge.Merge(programID, ui, loadIDL(t, "deposit_idl.json"))

	raw, err := json.Marshal(got[0].UIElements[1])
	if err != nil {
		t.Fatalf("marshal element: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode element: %v", err)
	}
	data, ok := decoded["dataElement"].(map[string]any)
	if !ok {
		t.Fatalf("missing dataElement in %s", raw)
	}
	if data["dataType"] != "u64" || data["index"] != float64(0) {
		t.Fatalf("unexpected dataElement %v", data)
	}
}
