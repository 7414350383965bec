// Package crypto implements the hash, address, and keypair primitives
// shared by transactions, block headers, and the gossip wire format.
package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// HashSize is the size in bytes of an H256 digest.
const HashSize = 32

// H256 is an opaque 32-byte digest. It has a total order by lexicographic
// byte comparison, which is how block hashes are compared against a
// difficulty target.
type H256 [HashSize]byte

// ZeroHash is the all-zero H256, used as the genesis block's parent.
var ZeroHash = H256{}

// HashBytes returns the SHA-256 digest of b as an H256.
func HashBytes(b []byte) H256 {
	return H256(sha256.Sum256(b))
}

// String returns the hex encoding of the hash.
func (h H256) String() string {
	return hex.EncodeToString(h[:])
}

// H256FromHex decodes a 64-character hex string into an H256, e.g. a
// cluster-wide difficulty target read from a config flag.
func H256FromHex(s string) (H256, error) {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return H256{}, err
	}
	if len(decoded) != HashSize {
		return H256{}, errors.Errorf("crypto: hex string decodes to %d bytes, want %d", len(decoded), HashSize)
	}
	var h H256
	copy(h[:], decoded)
	return h, nil
}

// Bytes returns a copy of the hash's bytes.
func (h H256) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// IsZero reports whether h is the all-zero hash.
func (h H256) IsZero() bool {
	return h == ZeroHash
}

// Cmp compares two hashes as big-endian 256-bit integers, returning a
// negative number, zero, or a positive number as h is less than, equal to,
// or greater than other. This is the ordering used for proof-of-work
// difficulty comparisons.
func (h H256) Cmp(other H256) int {
	return bytes.Compare(h[:], other[:])
}

// LessOrEqual reports whether h <= other under Cmp, i.e. whether a block
// hash h satisfies a difficulty target "other".
func (h H256) LessOrEqual(other H256) bool {
	return h.Cmp(other) <= 0
}
