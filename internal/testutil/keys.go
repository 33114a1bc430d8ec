package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// Keypair derives a deterministic keypair from name. The same name always
// yields the same key, so fixtures and golden traces stay stable.
func Keypair(name string) solana.PrivateKey {
	seed := sha256.Sum256([]byte("lottery-test-key:" + name))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
}

// PublicKey returns the public half of Keypair(name).
func PublicKey(name string) solana.PublicKey {
	return Keypair(name).PublicKey()
}
