package credix

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/supersafe-org/go-safe-apps/pkg/anchor"
)

type trancheAccounts struct {
	tranchePass                 solana.PublicKey
	dealTranches                solana.PublicKey
	trancheTokenMint            solana.PublicKey
	repaymentSchedule           solana.PublicKey
	dealTokenAccount            solana.PublicKey
	investorBaseAccount         solana.PublicKey
	investorTrancheTokenAccount solana.PublicKey
}

func (b *Builder) trancheAccounts(m *market, investor, deal solana.PublicKey, idx uint8) (trancheAccounts, error) {
	var (
		out trancheAccounts
		err error
	)
	if out.investorBaseAccount, err = associatedTokenAccount(investor, m.baseTokenMint); err != nil {
		return out, err
	}
	if out.tranchePass, err = b.tranchePass(m.address, investor, deal, idx); err != nil {
		return out, err
	}
	if out.dealTranches, err = b.dealTranches(m.address, deal); err != nil {
		return out, err
	}
	if out.trancheTokenMint, err = b.trancheMint(out.dealTranches, idx); err != nil {
		return out, err
	}
	if out.repaymentSchedule, err = b.repaymentSchedule(m.address, deal); err != nil {
		return out, err
	}
	if out.dealTokenAccount, err = b.dealTokenAccount(m.address, deal); err != nil {
		return out, err
	}
	out.investorTrancheTokenAccount, err = associatedTokenAccount(investor, out.trancheTokenMint)
	return out, err
}

func (t trancheAccounts) accounts(m *market, investor, deal solana.PublicKey) anchor.Accounts {
	return anchor.Accounts{
		"investor":                    investor,
		"tranchePass":                 t.tranchePass,
		"deal":                        deal,
		"dealTranches":                t.dealTranches,
		"trancheTokenMint":            t.trancheTokenMint,
		"repaymentSchedule":           t.repaymentSchedule,
		"dealTokenAccount":            t.dealTokenAccount,
		"investorBaseAccount":         t.investorBaseAccount,
		"investorTrancheTokenAccount": t.investorTrancheTokenAccount,
		"baseTokenMint":               m.baseTokenMint,
		"signingAuthority":            m.signingAuthority,
		"globalMarketState":           m.address,
		"associatedTokenProgram":      solana.SPLAssociatedTokenAccountProgramID,
		"tokenProgram":                solana.TokenProgramID,
		"systemProgram":               solana.SystemProgramID,
		"rent":                        solana.SysVarRentPubkey,
	}
}

// DepositTranche invests amount (six decimals) into tranche trancheIndex of
// deal. On v2 the optional tranche info account is passed as empty.
func (b *Builder) DepositTranche(ctx context.Context, investor, deal solana.PublicKey, amount decimal.Decimal, trancheIndex uint8, marketName string) (solana.Instruction, error) {
	m, err := b.loadMarket(ctx, marketName)
	if err != nil {
		return nil, err
	}
	tranche, err := b.trancheAccounts(m, investor, deal, trancheIndex)
	if err != nil {
		return nil, err
	}
	units, err := baseUnits(amount, fixedDecimals)
	if err != nil {
		return nil, err
	}

	accounts := tranche.accounts(m, investor, deal)
	if b.deployment.Layout == LayoutV2 {
		accounts["trancheInfo"] = b.deployment.ProgramID
	}
	return b.build("depositTranche", accounts, units, trancheIndex)
}

// WithdrawTranche withdraws from tranche trancheIndex of deal. The v1 layout
// withdraws amount (six decimals) through the investor tranche account; v2
// withdraws everything available and ignores amount.
func (b *Builder) WithdrawTranche(ctx context.Context, investor, deal solana.PublicKey, amount decimal.Decimal, trancheIndex uint8, marketName string) (solana.Instruction, error) {
	m, err := b.loadMarket(ctx, marketName)
	if err != nil {
		return nil, err
	}
	tranche, err := b.trancheAccounts(m, investor, deal, trancheIndex)
	if err != nil {
		return nil, err
	}
	accounts := tranche.accounts(m, investor, deal)

	if b.deployment.Layout == LayoutV2 {
		accounts["payer"] = investor
		accounts["trancheInfo"] = b.deployment.ProgramID
		return b.build("withdrawTranche", accounts, trancheIndex)
	}

	investorTranche, err := b.investorTranche(m.address, investor, deal, trancheIndex)
	if err != nil {
		return nil, err
	}
	units, err := baseUnits(amount, fixedDecimals)
	if err != nil {
		return nil, err
	}
	accounts["investorTranche"] = investorTranche
	return b.build("withdrawTranche", accounts, trancheIndex, units)
}
