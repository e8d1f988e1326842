package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/supersafe-org/go-safe-apps/pkg/apps/credix"
	"github.com/supersafe-org/go-safe-apps/pkg/idl"
)

type credixFlags struct {
	idlPath  string
	investor string
	amount   string
	market   string
	deal     string
	tranche  uint8
}

type accountView struct {
	PublicKey  string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type instructionView struct {
	ProgramID string        `json:"programId"`
	Accounts  []accountView `json:"accounts"`
	Data      string        `json:"data"`
}

func credixCmd(c *cli) *cobra.Command {
	f := &credixFlags{}
	cmd := &cobra.Command{
		Use:   "credix",
		Short: "Build Credix liquidity pool and tranche instructions",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.idlPath, "idl", "", "program definition file (fetched from the app registry if empty)")
	flags.StringVar(&f.investor, "investor", "", "investor public key (the multisig treasury)")
	flags.StringVar(&f.amount, "amount", "", "amount in token units")
	flags.StringVar(&f.market, "market", credix.DefaultMarket, "market name")

	type build func(ctx context.Context, b *credix.Builder, investor solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error)

	pool := func(use, short string, fn build) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				b, err := c.credixBuilder(cmd.Context(), f)
				if err != nil {
					return err
				}
				investor, amount, err := f.parse(true)
				if err != nil {
					return err
				}
				ix, err := fn(cmd.Context(), b, investor, amount)
				if err != nil {
					return err
				}
				return writeInstruction(cmd, ix)
			},
		}
	}

	tranche := func(use, short string, needsAmount bool, fn func(ctx context.Context, b *credix.Builder, investor, deal solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error)) *cobra.Command {
		sub := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				b, err := c.credixBuilder(cmd.Context(), f)
				if err != nil {
					return err
				}
				investor, amount, err := f.parse(needsAmount)
				if err != nil {
					return err
				}
				deal, err := solana.PublicKeyFromBase58(f.deal)
				if err != nil {
					return fmt.Errorf("invalid --deal: %w", err)
				}
				ix, err := fn(cmd.Context(), b, investor, deal, amount)
				if err != nil {
					return err
				}
				return writeInstruction(cmd, ix)
			},
		}
		sub.Flags().StringVar(&f.deal, "deal", "", "deal public key")
		sub.Flags().Uint8Var(&f.tranche, "tranche", 0, "tranche index")
		_ = sub.MarkFlagRequired("deal")
		return sub
	}

	cmd.AddCommand(
		pool("deposit", "Deposit base tokens into the liquidity pool",
			func(ctx context.Context, b *credix.Builder, investor solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error) {
				return b.Deposit(ctx, investor, amount, f.market)
			}),
		pool("withdraw", "Withdraw base tokens from the liquidity pool",
			func(ctx context.Context, b *credix.Builder, investor solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error) {
				return b.Withdraw(ctx, investor, amount, f.market)
			}),
		pool("withdraw-request", "File a withdraw request for the current epoch",
			func(ctx context.Context, b *credix.Builder, investor solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error) {
				return b.CreateWithdrawRequest(ctx, investor, amount, f.market)
			}),
		pool("redeem", "Redeem a withdraw request of the current epoch",
			func(ctx context.Context, b *credix.Builder, investor solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error) {
				return b.RedeemWithdrawRequest(ctx, investor, amount, f.market)
			}),
		tranche("deposit-tranche", "Invest into a deal tranche", true,
			func(ctx context.Context, b *credix.Builder, investor, deal solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error) {
				return b.DepositTranche(ctx, investor, deal, amount, f.tranche, f.market)
			}),
		tranche("withdraw-tranche", "Withdraw from a deal tranche", false,
			func(ctx context.Context, b *credix.Builder, investor, deal solana.PublicKey, amount decimal.Decimal) (solana.Instruction, error) {
				return b.WithdrawTranche(ctx, investor, deal, amount, f.tranche, f.market)
			}),
	)
	return cmd
}

func (f *credixFlags) parse(needsAmount bool) (solana.PublicKey, decimal.Decimal, error) {
	investor, err := solana.PublicKeyFromBase58(f.investor)
	if err != nil {
		return solana.PublicKey{}, decimal.Zero, fmt.Errorf("invalid --investor: %w", err)
	}
	if f.amount == "" {
		if needsAmount {
			return solana.PublicKey{}, decimal.Zero, errors.New("--amount is required")
		}
		return investor, decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return solana.PublicKey{}, decimal.Zero, fmt.Errorf("invalid --amount: %w", err)
	}
	return investor, amount, nil
}

func (c *cli) credixBuilder(ctx context.Context, f *credixFlags) (*credix.Builder, error) {
	deployment, ok := credix.DeploymentFor(c.cfg.Network)
	if !ok {
		return nil, fmt.Errorf("credix is not deployed on %s", c.cfg.Network)
	}

	def, err := c.credixDefinition(ctx, deployment, f.idlPath)
	if err != nil {
		return nil, err
	}

	endpoint := c.cfg.Endpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("no rpc endpoint configured for %s", c.cfg.Network)
	}
	client := rpc.New(endpoint)
	return credix.New(deployment, def, client, credix.WithLogger(c.logger))
}

func (c *cli) credixDefinition(ctx context.Context, deployment credix.Deployment, path string) (*idl.IDL, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return idl.Parse(data, path)
	}
	p, err := c.provider()
	if err != nil {
		return nil, err
	}
	cfg, err := p.ResolveAppConfig(ctx, deployment.ProgramID.String(), "", "")
	if err != nil {
		return nil, err
	}
	if cfg.Definition == nil {
		return nil, fmt.Errorf("%s publishes no program definition, pass --idl", deployment.Name)
	}
	return cfg.Definition, nil
}

func writeInstruction(cmd *cobra.Command, ix solana.Instruction) error {
	data, err := ix.Data()
	if err != nil {
		return err
	}
	view := instructionView{
		ProgramID: ix.ProgramID().String(),
		Data:      base64.StdEncoding.EncodeToString(data),
	}
	for _, meta := range ix.Accounts() {
		view.Accounts = append(view.Accounts, accountView{
			PublicKey:  meta.PublicKey.String(),
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}
	return writeJSON(cmd, view)
}
