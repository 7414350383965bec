// Package merkle implements the binary Merkle tree that binds an ordered
// list of transaction hashes to a block header's merkle root.
package merkle

import (
	"github.com/daglabs/accountchain/crypto"
)

// Tree is a binary hash tree built over an ordered list of leaf hashes.
type Tree struct {
	leafCount int
	levels    [][]crypto.H256 // levels[0] is the leaves, last level is [root]
}

// New builds a Tree over the given ordered leaf hashes. An empty leaf list
// produces the all-zero root with size 0.
func New(leaves []crypto.H256) *Tree {
	t := &Tree{leafCount: len(leaves)}
	if len(leaves) == 0 {
		t.levels = [][]crypto.H256{{crypto.ZeroHash}}
		return t
	}

	level := make([]crypto.H256, len(leaves))
	copy(level, leaves)
	t.levels = append(t.levels, level)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]crypto.H256, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = hashPair(level[2*i], level[2*i+1])
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

func hashPair(left, right crypto.H256) crypto.H256 {
	buf := make([]byte, 0, 2*crypto.HashSize)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return crypto.HashBytes(buf)
}

// Root returns the tree's root hash.
func (t *Tree) Root() crypto.H256 {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Size returns the number of leaves the tree was built over.
func (t *Tree) Size() int {
	return t.leafCount
}

// Proof returns the ordered list of sibling hashes needed to reduce leaf i
// up to the root, from the leaf level to the root.
func (t *Tree) Proof(i int) []crypto.H256 {
	if i < 0 || i >= t.leafCount {
		return nil
	}

	var proof []crypto.H256
	index := i
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		siblingIndex := index ^ 1
		if siblingIndex < len(nodes) {
			proof = append(proof, nodes[siblingIndex])
		} else {
			proof = append(proof, nodes[index])
		}
		index /= 2
	}
	return proof
}

// Verify reduces leaf through proof (sibling hashes, root-ward) using index
// to determine left/right ordering at each level, and reports whether the
// result equals root. leafSize is the total leaf count the proof was
// generated against.
func Verify(root crypto.H256, leaf crypto.H256, proof []crypto.H256, index int, leafSize int) bool {
	if leafSize == 0 {
		return root == crypto.ZeroHash
	}

	current := leaf
	idx := index
	for _, sibling := range proof {
		if idx%2 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		idx /= 2
	}
	return current == root
}
