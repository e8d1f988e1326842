package idl

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/supersafe-org/go-safe-apps/pkg/schema"
)

// Parse decodes an IDL document.
func Parse(data []byte, source string) (*IDL, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("idl: file %s is empty", source)
	}
	var out IDL
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("idl: parse %s: %w", source, err)
	}
	return &out, nil
}

// ParseDocument decodes a fetched definition document.
func ParseDocument(doc schema.Document) (*IDL, error) {
	return Parse(doc.Raw(), doc.Location())
}

// LoadFS reads and parses name from fsys.
func LoadFS(fsys fs.FS, name string) (*IDL, error) {
	if fsys == nil {
		return nil, fmt.Errorf("idl: fs is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("idl: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// ProgramName returns the program name from the header or the metadata.
func (d *IDL) ProgramName() string {
	if d == nil {
		return ""
	}
	if d.Name != "" {
		return d.Name
	}
	if d.Metadata != nil {
		return d.Metadata.Name
	}
	return ""
}

// Instruction finds an instruction by its exact name. A nil IDL matches
// nothing.
func (d *IDL) Instruction(name string) (*Instruction, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Instructions {
		if d.Instructions[i].Name == name {
			return &d.Instructions[i], true
		}
	}
	return nil, false
}

// Account returns the layout of an account type. Newer IDLs list the account
// with only a discriminator and keep the layout under types; the two are
// merged here.
func (d *IDL) Account(name string) (TypeDef, bool) {
	if d == nil {
		return TypeDef{}, false
	}
	for _, acc := range d.Accounts {
		if acc.Name != name {
			continue
		}
		if acc.Type == nil {
			if def, ok := d.Type(name); ok {
				acc.Type = def.Type
			}
		}
		return acc, acc.Type != nil
	}
	return TypeDef{}, false
}

// Type finds a user defined type by name.
func (d *IDL) Type(name string) (TypeDef, bool) {
	if d == nil {
		return TypeDef{}, false
	}
	for _, def := range d.Types {
		if def.Name == name {
			return def, true
		}
	}
	// Legacy IDLs allow instructions to reference account layouts as types.
	for _, def := range d.Accounts {
		if def.Name == name && def.Type != nil {
			return def, true
		}
	}
	return TypeDef{}, false
}

// Arg finds an instruction argument by name.
func (ix *Instruction) Arg(name string) (Field, bool) {
	if ix == nil {
		return Field{}, false
	}
	for _, arg := range ix.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return Field{}, false
}

// Account finds a top-level account item by name. Nested groups are not
// searched.
func (ix *Instruction) Account(name string) (AccountItem, bool) {
	if ix == nil {
		return AccountItem{}, false
	}
	for _, acc := range ix.Accounts {
		if acc.Name == name {
			return acc, true
		}
	}
	return AccountItem{}, false
}

// FlatAccounts expands nested groups depth-first, preserving order.
func (ix *Instruction) FlatAccounts() []AccountItem {
	if ix == nil {
		return nil
	}
	return flatten(nil, ix.Accounts)
}

func flatten(dst, items []AccountItem) []AccountItem {
	for _, item := range items {
		if item.IsGroup() {
			dst = flatten(dst, item.Accounts)
			continue
		}
		dst = append(dst, item)
	}
	return dst
}
