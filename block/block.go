// Package block implements the account-model Block and its Header: the unit
// the blockchain tree is built from, canonically serialized and hashed the
// same way on every node.
package block

import (
	"bytes"
	"io"

	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/merkle"
	"github.com/daglabs/accountchain/transaction"
	"github.com/daglabs/accountchain/wire"
	"github.com/pkg/errors"
)

// MaxTransactionsPerBlock bounds how many transactions Decode will accept in
// a single block body, guarding against a malformed/hostile length prefix.
const MaxTransactionsPerBlock = 1 << 20

// Header is the hashed portion of a Block: everything the proof-of-work
// nonce search covers.
type Header struct {
	Parent      crypto.H256
	Nonce       uint32
	Difficulty  crypto.H256
	TimestampMS uint64
	MerkleRoot  crypto.H256
}

// Encode writes the canonical serialization of h to w.
func (h *Header) Encode(w *bytes.Buffer) error {
	if err := wire.WriteElement(w, h.Parent[:]); err != nil {
		return err
	}
	if err := wire.WriteElement(w, h.Nonce); err != nil {
		return err
	}
	if err := wire.WriteElement(w, h.Difficulty[:]); err != nil {
		return err
	}
	if err := wire.WriteElement(w, h.TimestampMS); err != nil {
		return err
	}
	return wire.WriteElement(w, h.MerkleRoot[:])
}

// Decode reads a Header from r, the inverse of Encode.
func (h *Header) Decode(r *bytes.Reader) error {
	var parent, difficulty, merkleRoot [crypto.HashSize]byte
	if _, err := io.ReadFull(r, parent[:]); err != nil {
		return err
	}
	if err := wire.ReadElement(r, &h.Nonce); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, difficulty[:]); err != nil {
		return err
	}
	if err := wire.ReadElement(r, &h.TimestampMS); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, merkleRoot[:]); err != nil {
		return err
	}
	h.Parent = crypto.H256(parent)
	h.Difficulty = crypto.H256(difficulty)
	h.MerkleRoot = crypto.H256(merkleRoot)
	return nil
}

// Bytes returns the canonical serialization of h.
func (h *Header) Bytes() []byte {
	var buf bytes.Buffer
	if err := h.Encode(&buf); err != nil {
		panic(err) // Encode of a well-formed Header never fails
	}
	return buf.Bytes()
}

// Hash returns the header's hash, which is also the block's hash and the
// key it is stored and referenced by everywhere (parent links, mempool
// removal, gossip).
func (h *Header) Hash() crypto.H256 {
	return crypto.HashBytes(h.Bytes())
}

// Block pairs a Header with its body, an ordered list of signed
// transactions.
type Block struct {
	Header  Header
	Content []*transaction.SignedTransaction
}

// Hash returns the block's hash, the hash of its header.
func (b *Block) Hash() crypto.H256 {
	return b.Header.Hash()
}

// MerkleRoot recomputes the Merkle root over Content's transaction hashes,
// for validating that Header.MerkleRoot matches the body it was shipped
// with.
func (b *Block) MerkleRoot() crypto.H256 {
	leaves := make([]crypto.H256, len(b.Content))
	for i, t := range b.Content {
		leaves[i] = t.Hash()
	}
	return merkle.New(leaves).Root()
}

// New builds a Block, computing its Merkle root over content.
func New(parent crypto.H256, nonce uint32, difficulty crypto.H256, timestampMS uint64, content []*transaction.SignedTransaction) *Block {
	b := &Block{Content: content}
	b.Header = Header{
		Parent:      parent,
		Nonce:       nonce,
		Difficulty:  difficulty,
		TimestampMS: timestampMS,
	}
	b.Header.MerkleRoot = b.MerkleRoot()
	return b
}

// Encode writes the canonical serialization of b to w: the header followed
// by a length-prefixed list of signed transactions.
func (b *Block) Encode(w *bytes.Buffer) error {
	if err := b.Header.Encode(w); err != nil {
		return err
	}
	if err := wire.WriteVarUint(w, uint64(len(b.Content))); err != nil {
		return err
	}
	for _, t := range b.Content {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a Block from r, the inverse of Encode.
func (b *Block) Decode(r *bytes.Reader) error {
	if err := b.Header.Decode(r); err != nil {
		return err
	}
	count, err := wire.ReadVarUint(r)
	if err != nil {
		return err
	}
	if count > MaxTransactionsPerBlock {
		return errors.Errorf("block: transaction count %d exceeds max allowed %d", count, MaxTransactionsPerBlock)
	}
	content := make([]*transaction.SignedTransaction, count)
	for i := range content {
		st := &transaction.SignedTransaction{}
		if err := st.Decode(r); err != nil {
			return err
		}
		content[i] = st
	}
	b.Content = content
	return nil
}

// Bytes returns the canonical serialization of b.
func (b *Block) Bytes() []byte {
	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		panic(err) // Encode of a well-formed Block never fails
	}
	return buf.Bytes()
}
