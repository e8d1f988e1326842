package idl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IDL is a parsed Anchor interface definition.
type IDL struct {
	Version      string        `json:"version,omitempty"`
	Name         string        `json:"name,omitempty"`
	Address      string        `json:"address,omitempty"`
	Metadata     *Metadata     `json:"metadata,omitempty"`
	Instructions []Instruction `json:"instructions"`
	Accounts     []TypeDef     `json:"accounts,omitempty"`
	Types        []TypeDef     `json:"types,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Errors       []ErrorCode   `json:"errors,omitempty"`
}

// Metadata carries the newer IDL header fields.
type Metadata struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Spec    string `json:"spec,omitempty"`
	Address string `json:"address,omitempty"`
}

// Instruction describes one program entrypoint.
type Instruction struct {
	Name          string        `json:"name"`
	Docs          []string      `json:"docs,omitempty"`
	Discriminator []byte        `json:"-"`
	Accounts      []AccountItem `json:"accounts"`
	Args          []Field       `json:"args"`
}

func (ix *Instruction) UnmarshalJSON(data []byte) error {
	type alias Instruction
	var raw struct {
		alias
		Discriminator []int `json:"discriminator"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ix = Instruction(raw.alias)
	if len(raw.Discriminator) > 0 {
		disc, err := toBytes(raw.Discriminator)
		if err != nil {
			return fmt.Errorf("idl: instruction %q: %w", ix.Name, err)
		}
		ix.Discriminator = disc
	}
	return nil
}

// AccountItem is either a single account or a named group of accounts.
type AccountItem struct {
	Name       string
	Docs       []string
	IsMut      bool
	IsSigner   bool
	IsOptional bool
	Address    string
	Accounts   []AccountItem
}

// IsGroup reports whether the item nests other accounts.
func (a AccountItem) IsGroup() bool {
	return len(a.Accounts) > 0
}

type accountItemFile struct {
	Name       string        `json:"name"`
	Docs       []string      `json:"docs,omitempty"`
	IsMut      *bool         `json:"isMut,omitempty"`
	IsSigner   *bool         `json:"isSigner,omitempty"`
	IsOptional *bool         `json:"isOptional,omitempty"`
	Writable   *bool         `json:"writable,omitempty"`
	Signer     *bool         `json:"signer,omitempty"`
	Optional   *bool         `json:"optional,omitempty"`
	Address    string        `json:"address,omitempty"`
	Accounts   []AccountItem `json:"accounts,omitempty"`
}

func (a *AccountItem) UnmarshalJSON(data []byte) error {
	var raw accountItemFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AccountItem{
		Name:       raw.Name,
		Docs:       raw.Docs,
		IsMut:      firstTrue(raw.IsMut, raw.Writable),
		IsSigner:   firstTrue(raw.IsSigner, raw.Signer),
		IsOptional: firstTrue(raw.IsOptional, raw.Optional),
		Address:    raw.Address,
		Accounts:   raw.Accounts,
	}
	return nil
}

func (a AccountItem) MarshalJSON() ([]byte, error) {
	if a.IsGroup() {
		return json.Marshal(struct {
			Name     string        `json:"name"`
			Accounts []AccountItem `json:"accounts"`
		}{a.Name, a.Accounts})
	}
	return json.Marshal(struct {
		Name       string   `json:"name"`
		Docs       []string `json:"docs,omitempty"`
		IsMut      bool     `json:"isMut"`
		IsSigner   bool     `json:"isSigner"`
		IsOptional bool     `json:"isOptional,omitempty"`
		Address    string   `json:"address,omitempty"`
	}{a.Name, a.Docs, a.IsMut, a.IsSigner, a.IsOptional, a.Address})
}

func firstTrue(values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return false
}

// Field is a named, typed value: an instruction argument or a struct field.
type Field struct {
	Name string   `json:"name"`
	Docs []string `json:"docs,omitempty"`
	Type Type     `json:"type"`
}

// TypeDef is a user defined struct or enum, also used for account layouts.
type TypeDef struct {
	Name          string       `json:"name"`
	Docs          []string     `json:"docs,omitempty"`
	Discriminator []byte       `json:"-"`
	Type          *TypeDefBody `json:"type,omitempty"`
}

func (d *TypeDef) UnmarshalJSON(data []byte) error {
	type alias TypeDef
	var raw struct {
		alias
		Discriminator []int `json:"discriminator"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = TypeDef(raw.alias)
	if len(raw.Discriminator) > 0 {
		disc, err := toBytes(raw.Discriminator)
		if err != nil {
			return fmt.Errorf("idl: type %q: %w", d.Name, err)
		}
		d.Discriminator = disc
	}
	return nil
}

// Kinds of TypeDefBody.
const (
	KindStruct = "struct"
	KindEnum   = "enum"
	KindAlias  = "type"
)

// TypeDefBody is the layout of a TypeDef. Named structs fill Fields, tuple
// structs fill Tuple.
type TypeDefBody struct {
	Kind     string    `json:"kind"`
	Fields   []Field   `json:"fields,omitempty"`
	Tuple    []Type    `json:"-"`
	Variants []Variant `json:"variants,omitempty"`
	Alias    *Type     `json:"alias,omitempty"`
}

func (b *TypeDefBody) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind     string            `json:"kind"`
		Fields   []json.RawMessage `json:"fields"`
		Variants []Variant         `json:"variants"`
		Alias    *Type             `json:"alias"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields, tuple, err := splitFields(raw.Fields)
	if err != nil {
		return err
	}
	*b = TypeDefBody{
		Kind:     raw.Kind,
		Fields:   fields,
		Tuple:    tuple,
		Variants: raw.Variants,
		Alias:    raw.Alias,
	}
	return nil
}

func (b TypeDefBody) MarshalJSON() ([]byte, error) {
	out := map[string]any{"kind": b.Kind}
	switch {
	case len(b.Fields) > 0:
		out["fields"] = b.Fields
	case len(b.Tuple) > 0:
		out["fields"] = b.Tuple
	}
	if len(b.Variants) > 0 {
		out["variants"] = b.Variants
	}
	if b.Alias != nil {
		out["alias"] = b.Alias
	}
	return json.Marshal(out)
}

// Variant is an enum variant. Named variants fill Fields, tuple variants
// fill Tuple, unit variants leave both empty.
type Variant struct {
	Name   string
	Fields []Field
	Tuple  []Type
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   string            `json:"name"`
		Fields []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields, tuple, err := splitFields(raw.Fields)
	if err != nil {
		return err
	}
	*v = Variant{Name: raw.Name, Fields: fields, Tuple: tuple}
	return nil
}

// splitFields sorts a fields list into named fields and bare tuple types.
func splitFields(items []json.RawMessage) ([]Field, []Type, error) {
	var (
		fields []Field
		tuple  []Type
	)
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err == nil {
			if _, named := obj["name"]; named {
				var f Field
				if err := json.Unmarshal(item, &f); err != nil {
					return nil, nil, err
				}
				fields = append(fields, f)
				continue
			}
		}
		var t Type
		if err := json.Unmarshal(item, &t); err != nil {
			return nil, nil, err
		}
		tuple = append(tuple, t)
	}
	return fields, tuple, nil
}

func (v Variant) MarshalJSON() ([]byte, error) {
	out := map[string]any{"name": v.Name}
	switch {
	case len(v.Fields) > 0:
		out["fields"] = v.Fields
	case len(v.Tuple) > 0:
		out["fields"] = v.Tuple
	}
	return json.Marshal(out)
}

// Event is an emitted event layout.
type Event struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

// ErrorCode is a custom program error.
type ErrorCode struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg,omitempty"`
}

// Type is the IDL type union. Exactly one member is set. Forms the decoder
// does not model (generics, generic array lengths) are kept verbatim in Raw.
type Type struct {
	Primitive string
	Defined   string
	Vec       *Type
	Option    *Type
	COption   *Type
	Array     *Type
	ArrayLen  int
	Raw       json.RawMessage
}

// Primitive type names. PublicKey and Pubkey are both accepted.
const (
	Bool      = "bool"
	U8        = "u8"
	I8        = "i8"
	U16       = "u16"
	I16       = "i16"
	U32       = "u32"
	I32       = "i32"
	F32       = "f32"
	U64       = "u64"
	I64       = "i64"
	F64       = "f64"
	U128      = "u128"
	I128      = "i128"
	Bytes     = "bytes"
	String    = "string"
	PublicKey = "publicKey"
	Pubkey    = "pubkey"
)

// PrimitiveType is shorthand for a primitive Type.
func PrimitiveType(name string) Type {
	return Type{Primitive: name}
}

// IsPublicKey reports whether t is a public key primitive.
func (t Type) IsPublicKey() bool {
	return t.Primitive == PublicKey || t.Primitive == Pubkey
}

// String renders the type in a compact Rust-like form.
func (t Type) String() string {
	switch {
	case t.Primitive != "":
		return t.Primitive
	case t.Defined != "":
		return t.Defined
	case t.Vec != nil:
		return "vec<" + t.Vec.String() + ">"
	case t.Option != nil:
		return "option<" + t.Option.String() + ">"
	case t.COption != nil:
		return "coption<" + t.COption.String() + ">"
	case t.Array != nil:
		return "[" + t.Array.String() + "; " + strconv.Itoa(t.ArrayLen) + "]"
	case len(t.Raw) > 0:
		return string(t.Raw)
	default:
		return ""
	}
}

func (t Type) MarshalJSON() ([]byte, error) {
	switch {
	case t.Primitive != "":
		return json.Marshal(t.Primitive)
	case t.Defined != "":
		return json.Marshal(map[string]string{"defined": t.Defined})
	case t.Vec != nil:
		return json.Marshal(map[string]Type{"vec": *t.Vec})
	case t.Option != nil:
		return json.Marshal(map[string]Type{"option": *t.Option})
	case t.COption != nil:
		return json.Marshal(map[string]Type{"coption": *t.COption})
	case t.Array != nil:
		return json.Marshal(map[string][]any{"array": {*t.Array, t.ArrayLen}})
	case len(t.Raw) > 0:
		return t.Raw, nil
	default:
		return []byte("null"), nil
	}
}

func (t *Type) UnmarshalJSON(data []byte) error {
	*t = Type{}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if strings.TrimSpace(name) == "" {
			return errors.New("idl: empty type name")
		}
		t.Primitive = name
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("idl: type must be a string or an object: %w", err)
	}

	if raw, ok := obj["defined"]; ok {
		defined, err := decodeDefined(raw)
		if err != nil {
			return err
		}
		t.Defined = defined
		return nil
	}
	if raw, ok := obj["vec"]; ok {
		return decodeInner(raw, &t.Vec)
	}
	if raw, ok := obj["option"]; ok {
		return decodeInner(raw, &t.Option)
	}
	if raw, ok := obj["coption"]; ok {
		return decodeInner(raw, &t.COption)
	}
	if raw, ok := obj["array"]; ok {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return errors.New("idl: array type must be [type, length]")
		}
		if err := json.Unmarshal(pair[1], &t.ArrayLen); err != nil {
			t.keepRaw(data)
			return nil
		}
		return decodeInner(pair[0], &t.Array)
	}
	t.keepRaw(data)
	return nil
}

func (t *Type) keepRaw(data []byte) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		*t = Type{Raw: append(json.RawMessage(nil), data...)}
		return
	}
	*t = Type{Raw: buf.Bytes()}
}

func decodeDefined(raw json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Name == "" {
		return "", errors.New("idl: defined type requires a name")
	}
	return obj.Name, nil
}

func decodeInner(raw json.RawMessage, dst **Type) error {
	var inner Type
	if err := json.Unmarshal(raw, &inner); err != nil {
		return err
	}
	*dst = &inner
	return nil
}

func toBytes(values []int) ([]byte, error) {
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("discriminator byte %d out of range", v)
		}
		out[i] = byte(v)
	}
	return out, nil
}
