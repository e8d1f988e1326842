// Package credix builds Credix lending protocol instructions for a multisig
// proposal: liquidity pool deposits and withdrawals and tranche deposits and
// withdrawals. Mainnet runs the v1 layout, devnet the v2 layout with
// epoch-based withdraw requests.
package credix
