package credix

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/supersafe-org/go-safe-apps/pkg/anchor"
	"github.com/supersafe-org/go-safe-apps/pkg/idl"
)

var (
	ErrMarketNotFound         = errors.New("credix: market not found")
	ErrMintNotFound           = errors.New("credix: mint not found")
	ErrProgramStateNotFound   = errors.New("credix: program state not found")
	ErrUnsupportedInstruction = errors.New("credix: instruction not supported by this deployment")
	ErrInvalidAmount          = errors.New("credix: invalid amount")
)

// Fixed decimals used by the v2 withdraw requests and tranche amounts.
const fixedDecimals = 6

const (
	accountGlobalMarketState = "GlobalMarketState"
	accountProgramState      = "ProgramState"
)

// Builder assembles Credix instructions for one deployment.
type Builder struct {
	deployment Deployment
	program    *anchor.Program
	fetcher    anchor.AccountFetcher
	logger     zerolog.Logger
}

// Option customises a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New creates a Builder for deployment. def is the program definition
// published for the deployment and fetcher reads market and mint accounts.
func New(deployment Deployment, def *idl.IDL, fetcher anchor.AccountFetcher, opts ...Option) (*Builder, error) {
	if fetcher == nil {
		return nil, errors.New("credix: account fetcher is required")
	}
	program, err := anchor.NewProgram(deployment.ProgramID, def, fetcher)
	if err != nil {
		return nil, fmt.Errorf("credix: %w", err)
	}
	b := &Builder{
		deployment: deployment,
		program:    program,
		fetcher:    fetcher,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.logger = b.logger.With().Str("component", "credix").Str("deployment", deployment.Name).Logger()
	return b, nil
}

// Deployment returns the deployment the builder targets.
func (b *Builder) Deployment() Deployment {
	return b.deployment
}

// market is the subset of the global market state the builders need.
type market struct {
	address                  solana.PublicKey
	signingAuthority         solana.PublicKey
	baseTokenMint            solana.PublicKey
	lpTokenMint              solana.PublicKey
	treasuryPoolTokenAccount solana.PublicKey
	latestWithdrawEpochIdx   uint32
}

func (b *Builder) loadMarket(ctx context.Context, name string) (*market, error) {
	address, err := b.MarketAddress(name)
	if err != nil {
		return nil, err
	}
	state, err := b.program.FetchAccount(ctx, accountGlobalMarketState, address)
	if err != nil {
		return nil, fmt.Errorf("credix: load market %s: %w", marketName(name), err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, marketName(name))
	}

	m := &market{address: address}
	if m.signingAuthority, err = b.signingAuthority(address); err != nil {
		return nil, err
	}
	if m.baseTokenMint, err = keyField(state, "baseTokenMint"); err != nil {
		return nil, err
	}
	if m.lpTokenMint, err = keyField(state, "lpTokenMint"); err != nil {
		return nil, err
	}
	if m.treasuryPoolTokenAccount, err = keyField(state, "treasuryPoolTokenAccount"); err != nil {
		return nil, err
	}
	if b.deployment.Layout == LayoutV2 {
		epoch, ok := state["latestWithdrawEpochIdx"].(uint32)
		if !ok {
			return nil, errors.New("credix: market state has no latestWithdrawEpochIdx")
		}
		m.latestWithdrawEpochIdx = epoch
	}

	b.logger.Debug().
		Str("market", address.String()).
		Str("base_mint", m.baseTokenMint.String()).
		Msg("loaded market")
	return m, nil
}

func keyField(state map[string]any, name string) (solana.PublicKey, error) {
	key, ok := state[name].(solana.PublicKey)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("credix: market state has no %s", name)
	}
	return key, nil
}

func (b *Builder) mintDecimals(ctx context.Context, mint solana.PublicKey) (int32, error) {
	data, err := anchor.FetchAccountData(ctx, b.fetcher, mint)
	if err != nil {
		return 0, fmt.Errorf("credix: load mint %s: %w", mint, err)
	}
	if data == nil {
		return 0, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	var info token.Mint
	if err := bin.NewBinDecoder(data).Decode(&info); err != nil {
		return 0, fmt.Errorf("credix: decode mint %s: %w", mint, err)
	}
	return int32(info.Decimals), nil
}

// baseUnits converts a UI amount into integer base units.
func baseUnits(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, amount)
	}
	scaled := amount.Shift(decimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, amount, decimals)
	}
	units := scaled.BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows u64", ErrInvalidAmount, amount)
	}
	return units.Uint64(), nil
}

func (b *Builder) require(layout Layout, name string) error {
	if b.deployment.Layout != layout {
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedInstruction, name, b.deployment.Name)
	}
	return nil
}

func (b *Builder) build(name string, accounts anchor.Accounts, args ...any) (solana.Instruction, error) {
	ix, err := b.program.Instruction(name, accounts, args...)
	if err != nil {
		return nil, fmt.Errorf("credix: %w", err)
	}
	b.logger.Debug().Str("instruction", name).Int("accounts", len(ix.Accounts())).Msg("built instruction")
	return ix, nil
}
