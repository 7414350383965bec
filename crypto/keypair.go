package crypto

import (
	"crypto/ed25519"
)

// SeedSize is the size in bytes of the seed used to derive a KeyPair.
const SeedSize = ed25519.SeedSize

// KeyPair is an Ed25519 signing keypair and the Address derived from its
// public key.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	Address    Address
}

// KeyPairFromSeed deterministically derives a KeyPair from a 32-byte seed.
// Every node in a cluster that derives a keypair from the same seed (as the
// ICO accounts do) produces byte-identical results.
func KeyPairFromSeed(seed [SeedSize]byte) *KeyPair {
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return &KeyPair{
		PublicKey:  pub,
		PrivateKey: priv,
		Address:    AddressFromPublicKey(pub),
	}
}

// Sign signs the SHA-256 digest of msg with the keypair's private key.
func (kp *KeyPair) Sign(msg []byte) []byte {
	digest := HashBytes(msg)
	return ed25519.Sign(kp.PrivateKey, digest[:])
}

// VerifySignature verifies that sig is a valid Ed25519 signature over the
// SHA-256 digest of msg under pubKey.
func VerifySignature(pubKey []byte, msg []byte, sig []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}
	digest := HashBytes(msg)
	return ed25519.Verify(ed25519.PublicKey(pubKey), digest[:], sig)
}

