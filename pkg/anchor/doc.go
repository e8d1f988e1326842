// Package anchor builds and decodes Anchor program data from an interface
// definition: instruction discriminators, borsh argument encoding, account
// meta ordering and account layout decoding. It covers what transaction
// builders need and nothing more; it does not sign or send.
package anchor
