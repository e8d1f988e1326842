package uischema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Instruction is one entry of a UI schema document.
type Instruction struct {
	Name                 string          `json:"name" yaml:"name"`
	Label                string          `json:"label" yaml:"label"`
	Help                 string          `json:"help" yaml:"help"`
	Type                 InstructionType `json:"type" yaml:"type"`
	Accounts             []Field         `json:"accounts" yaml:"accounts"`
	Args                 []Field         `json:"args" yaml:"args"`
	AllowUnmatchedIxName bool            `json:"allowUnmatchedIxName,omitempty" yaml:"allowUnmatchedIxName,omitempty"`
}

// Field describes how a single account or argument is presented.
type Field struct {
	Name       string     `json:"name" yaml:"name"`
	Label      string     `json:"label" yaml:"label"`
	Help       string     `json:"help" yaml:"help"`
	Type       Type       `json:"type" yaml:"type"`
	Value      any        `json:"value,omitempty" yaml:"value,omitempty"`
	Visibility Visibility `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// Visibility controls whether a field is displayed.
type Visibility string

const (
	VisibilityShow     Visibility = "show"
	VisibilityHide     Visibility = "hide"
	VisibilityReadOnly Visibility = "readOnly"
)

// Normalize maps the empty value to VisibilityShow.
func (v Visibility) Normalize() Visibility {
	if strings.TrimSpace(string(v)) == "" {
		return VisibilityShow
	}
	return v
}

// Hidden reports whether the field should not be displayed.
func (v Visibility) Hidden() bool {
	return v == VisibilityHide
}

// Known widget kinds used by the published UI schemas.
const (
	KindTextInfo        = "textInfo"
	KindYesOrNo         = "yesOrNo"
	KindOption          = "option"
	KindOptionOwners    = "optionOwners"
	KindOptionAccounts  = "optionAccounts"
	KindInputText       = "inputText"
	KindInputTextArea   = "inputTextArea"
	KindInputNumber     = "inputNumber"
	KindDatePicker      = "datePicker"
	KindSlot            = "slot"
	KindKnownValue      = "knownValue"
	KindTreasuryAccount = "treasuryAccount"
	KindTxProposer      = "txProposer"
	KindMultisig        = "multisig"
)

// Type is the widget type of a field. Exactly one of Kind, Token or Func is
// set: a plain widget name, a token amount input, or a named helper
// function.
type Type struct {
	Kind  string    `json:"-" yaml:"-"`
	Token *TokenRef `json:"-" yaml:"-"`
	Func  string    `json:"-" yaml:"-"`
}

// TokenRef points a token amount field at its mint: either a fixed mint
// address or the name of the input that holds it.
type TokenRef struct {
	Mint    string
	InputID string
}

// KindType is shorthand for a plain widget type.
func KindType(kind string) Type {
	return Type{Kind: kind}
}

// IsZero reports whether no type was set.
func (t Type) IsZero() bool {
	return t.Kind == "" && t.Token == nil && t.Func == ""
}

// String renders a compact representation used in logs and summaries.
func (t Type) String() string {
	switch {
	case t.Token != nil && t.Token.InputID != "":
		return "token(" + t.Token.InputID + ")"
	case t.Token != nil:
		return "token:" + t.Token.Mint
	case t.Func != "":
		return "func:" + t.Func
	default:
		return t.Kind
	}
}

type typeObject struct {
	Token json.RawMessage `json:"token,omitempty"`
	Func  string          `json:"func,omitempty"`
}

type tokenObject struct {
	InputID string `json:"inputId" yaml:"inputId"`
}

func (t Type) MarshalJSON() ([]byte, error) {
	switch {
	case t.Token != nil && t.Token.InputID != "":
		return json.Marshal(map[string]any{"token": tokenObject{InputID: t.Token.InputID}})
	case t.Token != nil:
		return json.Marshal(map[string]any{"token": t.Token.Mint})
	case t.Func != "":
		return json.Marshal(map[string]string{"func": t.Func})
	case t.Kind != "":
		return json.Marshal(t.Kind)
	default:
		return []byte("null"), nil
	}
}

func (t *Type) UnmarshalJSON(data []byte) error {
	*t = Type{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		t.Kind = kind
		return nil
	}

	var obj typeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("uischema: type must be a string or an object: %w", err)
	}
	switch {
	case len(obj.Token) > 0:
		ref, err := decodeTokenJSON(obj.Token)
		if err != nil {
			return err
		}
		t.Token = ref
	case obj.Func != "":
		t.Func = obj.Func
	default:
		return errors.New("uischema: type object must define token or func")
	}
	return nil
}

func decodeTokenJSON(raw json.RawMessage) (*TokenRef, error) {
	var mint string
	if err := json.Unmarshal(raw, &mint); err == nil {
		return &TokenRef{Mint: mint}, nil
	}
	var obj tokenObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("uischema: token must be a mint or an {inputId} object: %w", err)
	}
	return &TokenRef{InputID: obj.InputID}, nil
}

func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	*t = Type{}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		t.Kind = node.Value
		return nil
	case yaml.MappingNode:
		var obj struct {
			Token yaml.Node `yaml:"token"`
			Func  string    `yaml:"func"`
		}
		if err := node.Decode(&obj); err != nil {
			return fmt.Errorf("uischema: decode type: %w", err)
		}
		switch {
		case obj.Token.Kind == yaml.ScalarNode:
			t.Token = &TokenRef{Mint: obj.Token.Value}
		case obj.Token.Kind == yaml.MappingNode:
			var ref tokenObject
			if err := obj.Token.Decode(&ref); err != nil {
				return fmt.Errorf("uischema: decode token: %w", err)
			}
			t.Token = &TokenRef{InputID: ref.InputID}
		case obj.Func != "":
			t.Func = obj.Func
		default:
			return errors.New("uischema: type object must define token or func")
		}
		return nil
	default:
		return fmt.Errorf("uischema: unsupported type node at line %d", node.Line)
	}
}

// InstructionType is either the "config" marker or a named helper function
// that assembles the instruction.
type InstructionType struct {
	Kind     string `json:"-" yaml:"-"`
	FuncName string `json:"-" yaml:"-"`
}

// ConfigInstruction marks an instruction assembled directly from its fields.
const ConfigInstruction = "config"

// IsConfig reports whether the instruction is built directly from its fields.
func (t InstructionType) IsConfig() bool {
	return t.FuncName == "" && t.Kind == ConfigInstruction
}

// IsFunc reports whether a helper function builds the instruction.
func (t InstructionType) IsFunc() bool {
	return t.FuncName != ""
}

func (t InstructionType) MarshalJSON() ([]byte, error) {
	switch {
	case t.FuncName != "":
		return json.Marshal(map[string]map[string]string{"func": {"name": t.FuncName}})
	case t.Kind != "":
		return json.Marshal(t.Kind)
	default:
		return []byte("null"), nil
	}
}

func (t *InstructionType) UnmarshalJSON(data []byte) error {
	*t = InstructionType{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		t.Kind = kind
		return nil
	}
	var obj struct {
		Func struct {
			Name string `json:"name"`
		} `json:"func"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("uischema: instruction type must be a string or a func object: %w", err)
	}
	if obj.Func.Name == "" {
		return errors.New("uischema: instruction func type requires a name")
	}
	t.FuncName = obj.Func.Name
	return nil
}

func (t *InstructionType) UnmarshalYAML(node *yaml.Node) error {
	*t = InstructionType{}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		t.Kind = node.Value
		return nil
	case yaml.MappingNode:
		var obj struct {
			Func struct {
				Name string `yaml:"name"`
			} `yaml:"func"`
		}
		if err := node.Decode(&obj); err != nil {
			return fmt.Errorf("uischema: decode instruction type: %w", err)
		}
		if obj.Func.Name == "" {
			return errors.New("uischema: instruction func type requires a name")
		}
		t.FuncName = obj.Func.Name
		return nil
	default:
		return fmt.Errorf("uischema: unsupported instruction type node at line %d", node.Line)
	}
}
