package credix

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Seed suffixes of the Credix program derived addresses.
const (
	seedCredixPass        = "credix-pass"
	seedTranchePass       = "tranche-pass"
	seedTranches          = "tranches"
	seedTrancheMint       = "tranche-mint"
	seedRepaymentSchedule = "repayment-schedule"
	seedDealTokenAccount  = "deal-token-account"
	seedInvestorTranche   = "tranche"
	seedWithdrawEpoch     = "withdraw-epoch"
	seedWithdrawRequest   = "withdraw-request"
	seedProgramState      = "program-state"
)

func (b *Builder) pda(seeds ...[]byte) (solana.PublicKey, error) {
	return b.program.FindProgramAddress(seeds...)
}

// MarketAddress derives the global market state address of market.
func (b *Builder) MarketAddress(market string) (solana.PublicKey, error) {
	return b.pda([]byte(marketName(market)))
}

func (b *Builder) signingAuthority(market solana.PublicKey) (solana.PublicKey, error) {
	return b.pda(market[:])
}

func (b *Builder) credixPass(market, investor solana.PublicKey) (solana.PublicKey, error) {
	return b.pda(market[:], investor[:], []byte(seedCredixPass))
}

func (b *Builder) tranchePass(market, investor, deal solana.PublicKey, idx uint8) (solana.PublicKey, error) {
	return b.pda(market[:], investor[:], deal[:], []byte{idx}, []byte(seedTranchePass))
}

func (b *Builder) dealTranches(market, deal solana.PublicKey) (solana.PublicKey, error) {
	return b.pda(market[:], deal[:], []byte(seedTranches))
}

func (b *Builder) trancheMint(tranches solana.PublicKey, idx uint8) (solana.PublicKey, error) {
	return b.pda(tranches[:], []byte{idx}, []byte(seedTrancheMint))
}

func (b *Builder) repaymentSchedule(market, deal solana.PublicKey) (solana.PublicKey, error) {
	return b.pda(market[:], deal[:], []byte(seedRepaymentSchedule))
}

func (b *Builder) dealTokenAccount(market, deal solana.PublicKey) (solana.PublicKey, error) {
	return b.pda(market[:], deal[:], []byte(seedDealTokenAccount))
}

func (b *Builder) investorTranche(market, investor, deal solana.PublicKey, idx uint8) (solana.PublicKey, error) {
	return b.pda(market[:], investor[:], deal[:], []byte{idx}, []byte(seedInvestorTranche))
}

func (b *Builder) withdrawEpoch(market solana.PublicKey, epoch uint32) (solana.PublicKey, error) {
	return b.pda(market[:], u32le(epoch), []byte(seedWithdrawEpoch))
}

func (b *Builder) withdrawRequest(market, investor solana.PublicKey, epoch uint32) (solana.PublicKey, error) {
	return b.pda(market[:], investor[:], u32le(epoch), []byte(seedWithdrawRequest))
}

func (b *Builder) programState() (solana.PublicKey, error) {
	return b.pda([]byte(seedProgramState))
}

func u32le(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func marketName(market string) string {
	if market == "" {
		return DefaultMarket
	}
	return market
}

// associatedTokenAccount derives the associated token account of owner for
// mint. Owners may be off-curve program addresses.
func associatedTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}
