// Package idl models Anchor interface definitions: the instruction, account
// and type layout a deployed program exposes. Both the legacy spelling
// (isMut/isSigner, publicKey) and the newer one (writable/signer, pubkey) are
// accepted.
package idl
