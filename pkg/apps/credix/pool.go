package credix

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/supersafe-org/go-safe-apps/pkg/anchor"
)

type poolAccounts struct {
	investorTokenAccount      solana.PublicKey
	liquidityPoolTokenAccount solana.PublicKey
	investorLpTokenAccount    solana.PublicKey
	credixPass                solana.PublicKey
}

func (b *Builder) poolAccounts(m *market, investor solana.PublicKey) (poolAccounts, error) {
	var (
		out poolAccounts
		err error
	)
	if out.investorTokenAccount, err = associatedTokenAccount(investor, m.baseTokenMint); err != nil {
		return out, err
	}
	if out.liquidityPoolTokenAccount, err = associatedTokenAccount(m.signingAuthority, m.baseTokenMint); err != nil {
		return out, err
	}
	if out.investorLpTokenAccount, err = associatedTokenAccount(investor, m.lpTokenMint); err != nil {
		return out, err
	}
	out.credixPass, err = b.credixPass(m.address, investor)
	return out, err
}

// Deposit builds a liquidity pool deposit of amount base tokens. The amount
// is scaled by the base mint decimals.
func (b *Builder) Deposit(ctx context.Context, investor solana.PublicKey, amount decimal.Decimal, marketName string) (solana.Instruction, error) {
	m, err := b.loadMarket(ctx, marketName)
	if err != nil {
		return nil, err
	}
	pool, err := b.poolAccounts(m, investor)
	if err != nil {
		return nil, err
	}
	decimals, err := b.mintDecimals(ctx, m.baseTokenMint)
	if err != nil {
		return nil, err
	}
	units, err := baseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}

	return b.build("depositFunds", anchor.Accounts{
		"investor":                  investor,
		"globalMarketState":         m.address,
		"signingAuthority":          m.signingAuthority,
		"investorTokenAccount":      pool.investorTokenAccount,
		"liquidityPoolTokenAccount": pool.liquidityPoolTokenAccount,
		"lpTokenMint":               m.lpTokenMint,
		"investorLpTokenAccount":    pool.investorLpTokenAccount,
		"credixPass":                pool.credixPass,
		"baseTokenMint":             m.baseTokenMint,
		"associatedTokenProgram":    solana.SPLAssociatedTokenAccountProgramID,
		"rent":                      solana.SysVarRentPubkey,
		"tokenProgram":              solana.TokenProgramID,
		"systemProgram":             solana.SystemProgramID,
	}, units)
}

// Withdraw builds a direct liquidity pool withdrawal. Only the v1 layout
// supports it; v2 deployments go through withdraw requests.
func (b *Builder) Withdraw(ctx context.Context, investor solana.PublicKey, amount decimal.Decimal, marketName string) (solana.Instruction, error) {
	if err := b.require(LayoutV1, "withdrawFunds"); err != nil {
		return nil, err
	}
	m, err := b.loadMarket(ctx, marketName)
	if err != nil {
		return nil, err
	}
	pool, err := b.poolAccounts(m, investor)
	if err != nil {
		return nil, err
	}
	decimals, err := b.mintDecimals(ctx, m.baseTokenMint)
	if err != nil {
		return nil, err
	}
	units, err := baseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}

	return b.build("withdrawFunds", anchor.Accounts{
		"investor":                  investor,
		"globalMarketState":         m.address,
		"signingAuthority":          m.signingAuthority,
		"investorLpTokenAccount":    pool.investorLpTokenAccount,
		"investorTokenAccount":      pool.investorTokenAccount,
		"liquidityPoolTokenAccount": pool.liquidityPoolTokenAccount,
		"treasuryPoolTokenAccount":  m.treasuryPoolTokenAccount,
		"lpTokenMint":               m.lpTokenMint,
		"credixPass":                pool.credixPass,
		"baseTokenMint":             m.baseTokenMint,
		"associatedTokenProgram":    solana.SPLAssociatedTokenAccountProgramID,
		"tokenProgram":              solana.TokenProgramID,
	}, units)
}

// CreateWithdrawRequest files a withdraw request for the current withdraw
// epoch (v2 only). The amount uses six decimals.
func (b *Builder) CreateWithdrawRequest(ctx context.Context, investor solana.PublicKey, amount decimal.Decimal, marketName string) (solana.Instruction, error) {
	if err := b.require(LayoutV2, "createWithdrawRequest"); err != nil {
		return nil, err
	}
	m, err := b.loadMarket(ctx, marketName)
	if err != nil {
		return nil, err
	}
	pool, err := b.poolAccounts(m, investor)
	if err != nil {
		return nil, err
	}
	epoch, request, err := b.withdrawAccounts(m, investor)
	if err != nil {
		return nil, err
	}
	units, err := baseUnits(amount, fixedDecimals)
	if err != nil {
		return nil, err
	}

	return b.build("createWithdrawRequest", anchor.Accounts{
		"payer":                     investor,
		"investor":                  investor,
		"globalMarketState":         m.address,
		"signingAuthority":          m.signingAuthority,
		"credixPass":                pool.credixPass,
		"withdrawEpoch":             epoch,
		"withdrawRequest":           request,
		"investorLpTokenAccount":    pool.investorLpTokenAccount,
		"liquidityPoolTokenAccount": pool.liquidityPoolTokenAccount,
		"lpTokenMint":               m.lpTokenMint,
		"systemProgram":             solana.SystemProgramID,
	}, units)
}

// RedeemWithdrawRequest redeems a withdraw request of the current epoch
// (v2 only). The amount uses six decimals.
func (b *Builder) RedeemWithdrawRequest(ctx context.Context, investor solana.PublicKey, amount decimal.Decimal, marketName string) (solana.Instruction, error) {
	if err := b.require(LayoutV2, "redeemWithdrawRequest"); err != nil {
		return nil, err
	}
	m, err := b.loadMarket(ctx, marketName)
	if err != nil {
		return nil, err
	}
	pool, err := b.poolAccounts(m, investor)
	if err != nil {
		return nil, err
	}
	epoch, request, err := b.withdrawAccounts(m, investor)
	if err != nil {
		return nil, err
	}

	stateAddress, err := b.programState()
	if err != nil {
		return nil, err
	}
	state, err := b.program.FetchAccount(ctx, accountProgramState, stateAddress)
	if err != nil {
		return nil, fmt.Errorf("credix: load program state: %w", err)
	}
	if state == nil {
		return nil, ErrProgramStateNotFound
	}
	multisig, ok := state["credixMultisigKey"].(solana.PublicKey)
	if !ok {
		return nil, errors.New("credix: program state has no credixMultisigKey")
	}
	multisigTokenAccount, err := associatedTokenAccount(multisig, m.baseTokenMint)
	if err != nil {
		return nil, err
	}
	units, err := baseUnits(amount, fixedDecimals)
	if err != nil {
		return nil, err
	}

	return b.build("redeemWithdrawRequest", anchor.Accounts{
		"investor":                   investor,
		"globalMarketState":          m.address,
		"withdrawEpoch":              epoch,
		"withdrawRequest":            request,
		"programState":               stateAddress,
		"signingAuthority":           m.signingAuthority,
		"investorLpTokenAccount":     pool.investorLpTokenAccount,
		"investorTokenAccount":       pool.investorTokenAccount,
		"liquidityPoolTokenAccount":  pool.liquidityPoolTokenAccount,
		"credixMultisigKey":          multisig,
		"credixMultisigTokenAccount": multisigTokenAccount,
		"treasuryPoolTokenAccount":   m.treasuryPoolTokenAccount,
		"lpTokenMint":                m.lpTokenMint,
		"credixPass":                 pool.credixPass,
		"baseTokenMint":              m.baseTokenMint,
		"associatedTokenProgram":     solana.SPLAssociatedTokenAccountProgramID,
		"tokenProgram":               solana.TokenProgramID,
		"systemProgram":              solana.SystemProgramID,
		"rent":                       solana.SysVarRentPubkey,
	}, units)
}

func (b *Builder) withdrawAccounts(m *market, investor solana.PublicKey) (solana.PublicKey, solana.PublicKey, error) {
	epoch, err := b.withdrawEpoch(m.address, m.latestWithdrawEpochIdx)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	request, err := b.withdrawRequest(m.address, investor, m.latestWithdrawEpochIdx)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return epoch, request, nil
}
