package merkle

import (
	"testing"

	"github.com/daglabs/accountchain/crypto"
)

func leafHash(b byte) crypto.H256 {
	return crypto.HashBytes([]byte{b})
}

func TestEmptyTree(t *testing.T) {
	tree := New(nil)
	if tree.Root() != crypto.ZeroHash {
		t.Fatalf("expected empty tree root to be zero hash, got %s", tree.Root())
	}
	if tree.Size() != 0 {
		t.Fatalf("expected size 0, got %d", tree.Size())
	}
}

func TestVerifyRoundTripVariousSizes(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 13} {
		leaves := make([]crypto.H256, n)
		for i := 0; i < n; i++ {
			leaves[i] = leafHash(byte(i))
		}
		tree := New(leaves)
		root := tree.Root()

		for i := 0; i < n; i++ {
			proof := tree.Proof(i)
			if !Verify(root, leaves[i], proof, i, n) {
				t.Fatalf("n=%d: verify failed for leaf index %d", n, i)
			}
		}
	}
}

func TestVerifyRejectsWrongLeaf(t *testing.T) {
	leaves := []crypto.H256{leafHash(0), leafHash(1), leafHash(2), leafHash(3)}
	tree := New(leaves)
	root := tree.Root()
	proof := tree.Proof(1)

	if Verify(root, leafHash(99), proof, 1, len(leaves)) {
		t.Fatal("expected verify to fail for a substituted leaf")
	}
}

func TestSingleLeafTreeRootIsLeaf(t *testing.T) {
	leaf := leafHash(42)
	tree := New([]crypto.H256{leaf})
	if tree.Root() != leaf {
		t.Fatalf("expected single-leaf tree root to equal the leaf hash")
	}
}
