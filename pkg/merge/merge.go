package merge

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

// Option customises Merge.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger routes merge failures to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Merge builds the instruction list for programID. It never fails: any
// unexpected condition is logged and an empty list is returned.
func Merge(programID string, ui []uischema.Instruction, def *idl.IDL, opts ...Option) []model.Instruction {
	cfg := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out, err := MergeStrict(programID, ui, def)
	if err != nil {
		cfg.logger.Error().Err(err).Str("program", programID).Msg("merge ui config")
		return []model.Instruction{}
	}
	return out
}

// MergeStrict is Merge with errors surfaced to the caller.
func MergeStrict(programID string, ui []uischema.Instruction, def *idl.IDL) ([]model.Instruction, error) {
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("merge: invalid program id %q: %w", programID, err)
	}

	out := make([]model.Instruction, 0, len(ui))
	if len(ui) == 0 {
		return out, nil
	}

	if registry.IsNative(programID) {
		return mergeNative(program, ui, out)
	}

	for _, uiIx := range ui {
		idlIx, matched := def.Instruction(uiIx.Name)
		if !matched && !uiIx.AllowUnmatchedIxName {
			continue
		}

		ix, err := newInstruction(program, uiIx)
		if err != nil {
			return nil, err
		}
		ix.UIElements = bindElements(uiIx, idlIx)
		out = append(out, ix)
	}
	return out, nil
}

// The custom transaction app exposes a single free-form field: the first
// argument of the first UI entry, with no binding.
func mergeNative(program solana.PublicKey, ui []uischema.Instruction, out []model.Instruction) ([]model.Instruction, error) {
	first := ui[0]
	if len(first.Args) == 0 {
		return out, nil
	}
	ix, err := newInstruction(program, first)
	if err != nil {
		return nil, err
	}
	ix.UIElements = append(ix.UIElements, element(first.Args[0], nil))
	return append(out, ix), nil
}

func newInstruction(program solana.PublicKey, uiIx uischema.Instruction) (model.Instruction, error) {
	id, err := InstructionID(program, uiIx.Name)
	if err != nil {
		return model.Instruction{}, err
	}
	return model.Instruction{
		ID:         id.String(),
		Name:       uiIx.Name,
		Label:      uiIx.Label,
		Help:       uiIx.Help,
		Type:       uiIx.Type,
		UIElements: []model.UIElement{},
	}, nil
}

func bindElements(uiIx uischema.Instruction, idlIx *idl.Instruction) []model.UIElement {
	elements := make([]model.UIElement, 0, len(uiIx.Accounts)+len(uiIx.Args))
	emitted := make(map[string]struct{}, cap(elements))

	accIndex := 0
	for _, uiAcc := range uiIx.Accounts {
		item, ok := idlIx.Account(uiAcc.Name)
		if !ok && !uiIx.AllowUnmatchedIxName {
			continue
		}
		acc := &model.Account{Index: accIndex, Name: uiAcc.Name}
		if ok {
			acc.Name = item.Name
			acc.IsWritable = item.IsMut
			acc.IsSigner = item.IsSigner
		}
		elements = append(elements, element(uiAcc, acc))
		emitted[uiAcc.Name] = struct{}{}
		accIndex++
	}

	argIndex := 0
	for _, uiArg := range uiIx.Args {
		if _, dup := emitted[uiArg.Name]; dup {
			continue
		}
		arg := &model.Arg{Index: argIndex, Name: uiArg.Name, DataType: model.UIType(uiArg.Type)}
		if field, ok := idlIx.Arg(uiArg.Name); ok {
			arg.Name = field.Name
			arg.DataType = model.IDLType(field.Type)
		}
		elements = append(elements, element(uiArg, arg))
		emitted[uiArg.Name] = struct{}{}
		argIndex++
	}

	return elements
}

func element(field uischema.Field, data model.DataElement) model.UIElement {
	return model.UIElement{
		Name:        field.Name,
		Label:       field.Label,
		Help:        field.Help,
		Type:        field.Type,
		Value:       field.Value,
		Visibility:  field.Visibility.Normalize(),
		DataElement: data,
	}
}

// InstructionID derives the stable identifier of an instruction: the program
// derived address of its name. Names longer than a seed are hashed first.
func InstructionID(program solana.PublicKey, name string) (solana.PublicKey, error) {
	seed := []byte(name)
	if len(seed) > solana.MaxSeedLength {
		sum := sha256.Sum256(seed)
		seed = sum[:]
	}
	addr, _, err := solana.FindProgramAddress([][]byte{seed}, program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("merge: derive id for %q: %w", name, err)
	}
	return addr, nil
}
