package anchor

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
)

var (
	// ErrInstructionNotFound is returned when the definition has no
	// instruction with the requested name.
	ErrInstructionNotFound = errors.New("anchor: instruction not found")

	// ErrAccountTypeNotFound is returned when the definition has no layout
	// for the requested account type.
	ErrAccountTypeNotFound = errors.New("anchor: account type not found")

	// ErrMissingAccount is returned when an instruction account was neither
	// supplied nor resolvable.
	ErrMissingAccount = errors.New("anchor: missing account")

	// ErrDiscriminatorMismatch is returned when fetched account data does
	// not start with the expected discriminator.
	ErrDiscriminatorMismatch = errors.New("anchor: account discriminator mismatch")
)

// AccountFetcher is the slice of the RPC client used to read accounts.
// *rpc.Client satisfies it.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Accounts maps instruction account names to addresses.
type Accounts map[string]solana.PublicKey

// Program pairs a program id with its definition.
type Program struct {
	id      solana.PublicKey
	def     *idl.IDL
	fetcher AccountFetcher
}

// NewProgram builds a Program. fetcher may be nil when only instructions are
// built.
func NewProgram(programID solana.PublicKey, def *idl.IDL, fetcher AccountFetcher) (*Program, error) {
	if def == nil {
		return nil, errors.New("anchor: program definition is required")
	}
	return &Program{id: programID, def: def, fetcher: fetcher}, nil
}

// ID returns the program id.
func (p *Program) ID() solana.PublicKey {
	return p.id
}

// IDL returns the program definition.
func (p *Program) IDL() *idl.IDL {
	return p.def
}

// FindProgramAddress derives a program address from seeds.
func (p *Program) FindProgramAddress(seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, p.id)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("anchor: derive address: %w", err)
	}
	return addr, nil
}

var wellKnownAccounts = map[string]solana.PublicKey{
	"systemProgram":            solana.SystemProgramID,
	"system_program":           solana.SystemProgramID,
	"tokenProgram":             solana.TokenProgramID,
	"token_program":            solana.TokenProgramID,
	"associatedTokenProgram":   solana.SPLAssociatedTokenAccountProgramID,
	"associated_token_program": solana.SPLAssociatedTokenAccountProgramID,
	"rent":                     solana.SysVarRentPubkey,
	"clock":                    solana.SysVarClockPubkey,
}

// Instruction builds the instruction called name. Accounts are laid out in
// definition order with definition flags. Optional accounts that are not
// supplied are replaced by the program id, which Anchor reads as "none";
// well-known programs and sysvars are filled in when omitted.
func (p *Program) Instruction(name string, accounts Accounts, args ...any) (solana.Instruction, error) {
	ix, ok := p.def.Instruction(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstructionNotFound, name)
	}

	metas := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
	for _, item := range ix.FlatAccounts() {
		key, ok := accounts[item.Name]
		if !ok {
			key, ok = p.resolveDefault(item)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingAccount, name, item.Name)
		}
		if item.IsOptional && key.Equals(p.id) {
			metas = append(metas, solana.NewAccountMeta(key, false, false))
			continue
		}
		metas = append(metas, solana.NewAccountMeta(key, item.IsMut, item.IsSigner))
	}

	data, err := EncodeArgs(p.def, ix.Args, args)
	if err != nil {
		return nil, fmt.Errorf("anchor: %s: %w", name, err)
	}
	disc := ix.Discriminator
	if len(disc) == 0 {
		disc = InstructionDiscriminator(ix.Name)
	}

	payload := make([]byte, 0, len(disc)+len(data))
	payload = append(payload, disc...)
	payload = append(payload, data...)
	return solana.NewInstruction(p.id, metas, payload), nil
}

func (p *Program) resolveDefault(item idl.AccountItem) (solana.PublicKey, bool) {
	if item.Address != "" {
		if key, err := solana.PublicKeyFromBase58(item.Address); err == nil {
			return key, true
		}
	}
	if key, ok := wellKnownAccounts[item.Name]; ok {
		return key, true
	}
	if item.IsOptional {
		return p.id, true
	}
	return solana.PublicKey{}, false
}

// FetchAccount reads and decodes the account of type typeName at address.
// A missing account yields nil, nil.
func (p *Program) FetchAccount(ctx context.Context, typeName string, address solana.PublicKey) (map[string]any, error) {
	if p.fetcher == nil {
		return nil, errors.New("anchor: no account fetcher configured")
	}
	layout, ok := p.def.Account(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountTypeNotFound, typeName)
	}

	data, err := FetchAccountData(ctx, p.fetcher, address)
	if err != nil || data == nil {
		return nil, err
	}

	disc := layout.Discriminator
	if len(disc) == 0 {
		disc = AccountDiscriminator(layout.Name)
	}
	if len(data) < len(disc) || !bytes.Equal(data[:len(disc)], disc) {
		return nil, fmt.Errorf("%w: %s at %s", ErrDiscriminatorMismatch, typeName, address)
	}
	if layout.Type.Kind != idl.KindStruct {
		return nil, fmt.Errorf("anchor: account %s is not a struct", typeName)
	}
	return DecodeStruct(p.def, layout.Type.Fields, data[len(disc):])
}

// FetchAccountData returns the raw data of address, or nil when the account
// does not exist.
func FetchAccountData(ctx context.Context, fetcher AccountFetcher, address solana.PublicKey) ([]byte, error) {
	res, err := fetcher.GetAccountInfo(ctx, address)
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("anchor: get account %s: %w", address, err)
	}
	if res == nil || res.Value == nil {
		return nil, nil
	}
	return res.GetBinary(), nil
}
