// Package auth verifies wallet ownership through detached Ed25519
// signatures and gates mutating HTTP endpoints on them.
package auth

import (
	"crypto/ed25519"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Verify reports whether signature is a valid detached Ed25519 signature
// of message under the public key encoded by wallet. wallet is a
// base58-encoded 32-byte Ed25519 public key and signature a base58-encoded
// 64-byte signature, the encoding Solana wallets produce with signMessage.
//
// Malformed input of any kind yields false; Verify never panics and never
// returns an error.
func Verify(wallet, message, signature string) bool {
	pub, err := base58.Decode(wallet)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	// Not every 32-byte string is a curve point. Reject invalid encodings
	// up front instead of relying on Verify to fail.
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}
