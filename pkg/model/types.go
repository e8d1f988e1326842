package model

import (
	"encoding/json"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

// AppConfig is the result of fetching and merging an app's documents.
// Definition is nil when the program definition was not available.
type AppConfig struct {
	UI         []Instruction `json:"ui"`
	Definition *idl.IDL      `json:"definition"`
}

// Instruction is a renderable program instruction. ID is the program derived
// address of the instruction name and is stable for a given program.
type Instruction struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Label      string                   `json:"label"`
	Help       string                   `json:"help"`
	Type       uischema.InstructionType `json:"type"`
	UIElements []UIElement              `json:"uiElements"`
}

// UIElement is one renderable field. DataElement is nil for unbound fields
// (the custom transaction app), otherwise an *Account or an *Arg.
type UIElement struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Help        string              `json:"help"`
	Type        uischema.Type       `json:"type"`
	Value       any                 `json:"value,omitempty"`
	Visibility  uischema.Visibility `json:"visibility"`
	DataElement DataElement         `json:"dataElement,omitempty"`
}

// DataElement binds a UI element to an instruction slot.
type DataElement interface {
	Position() int
	dataElement()
}

// Account binds an element to the account list of the instruction.
type Account struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
	DataValue  string `json:"dataValue"`
}

func (a *Account) Position() int { return a.Index }
func (*Account) dataElement()    {}

// Arg binds an element to the argument list of the instruction.
type Arg struct {
	Index     int      `json:"index"`
	Name      string   `json:"name"`
	DataType  DataType `json:"dataType"`
	DataValue any      `json:"dataValue"`
}

func (a *Arg) Position() int { return a.Index }
func (*Arg) dataElement()    {}

// DataType is the declared type of an argument: the program definition type
// when the argument is known to the program, otherwise the UI widget type.
type DataType struct {
	IDL *idl.Type
	UI  *uischema.Type
}

// IDLType wraps a definition type.
func IDLType(t idl.Type) DataType {
	return DataType{IDL: &t}
}

// UIType wraps a widget type.
func UIType(t uischema.Type) DataType {
	return DataType{UI: &t}
}

// String returns the printable type name.
func (d DataType) String() string {
	switch {
	case d.IDL != nil:
		return d.IDL.String()
	case d.UI != nil:
		return d.UI.String()
	default:
		return ""
	}
}

func (d DataType) MarshalJSON() ([]byte, error) {
	switch {
	case d.IDL != nil:
		return json.Marshal(d.IDL)
	case d.UI != nil:
		return json.Marshal(d.UI)
	default:
		return []byte("null"), nil
	}
}

// Element returns the element called name.
func (ix Instruction) Element(name string) (UIElement, bool) {
	for _, el := range ix.UIElements {
		if el.Name == name {
			return el, true
		}
	}
	return UIElement{}, false
}

// Accounts returns the account bindings in index order.
func (ix Instruction) Accounts() []*Account {
	var out []*Account
	for _, el := range ix.UIElements {
		if acc, ok := el.DataElement.(*Account); ok {
			out = append(out, acc)
		}
	}
	return out
}

// Args returns the argument bindings in index order.
func (ix Instruction) Args() []*Arg {
	var out []*Arg
	for _, el := range ix.UIElements {
		if arg, ok := el.DataElement.(*Arg); ok {
			out = append(out, arg)
		}
	}
	return out
}

// Find returns the instruction called name.
func (c *AppConfig) Find(name string) (Instruction, bool) {
	if c == nil {
		return Instruction{}, false
	}
	for _, ix := range c.UI {
		if ix.Name == name {
			return ix, true
		}
	}
	return Instruction{}, false
}
