package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// AddressSize is the size in bytes of an Address.
const AddressSize = 20

// Address is a 20-byte account identifier derived from an Ed25519 public
// key: the last 20 bytes of the SHA-256 digest of the 32-byte public key.
type Address [AddressSize]byte

// AddressFromPublicKey derives the Address for a 32-byte Ed25519 public key.
func AddressFromPublicKey(pubKey []byte) Address {
	digest := sha256.Sum256(pubKey)
	var addr Address
	copy(addr[:], digest[len(digest)-AddressSize:])
	return addr
}

// String returns the hex encoding of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}
