// Package protocol implements the peer-to-peer Message envelope and the
// network worker pool that dispatches decoded messages: gossip of new
// blocks and transactions, on-demand fetch, and orphan-block recovery.
package protocol

import (
	"bytes"

	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/transaction"
	"github.com/daglabs/accountchain/wire"
	"github.com/pkg/errors"
)

// Command identifies a Message's concrete type on the wire.
type Command uint8

// The eight message variants the core's gossip protocol exchanges.
const (
	CmdPing Command = iota
	CmdPong
	CmdNewBlockHashes
	CmdGetBlocks
	CmdBlocks
	CmdNewTransactionHashes
	CmdGetTransactions
	CmdTransactions
)

func (c Command) String() string {
	switch c {
	case CmdPing:
		return "Ping"
	case CmdPong:
		return "Pong"
	case CmdNewBlockHashes:
		return "NewBlockHashes"
	case CmdGetBlocks:
		return "GetBlocks"
	case CmdBlocks:
		return "Blocks"
	case CmdNewTransactionHashes:
		return "NewTransactionHashes"
	case CmdGetTransactions:
		return "GetTransactions"
	case CmdTransactions:
		return "Transactions"
	default:
		return "Unknown"
	}
}

// Message is a decoded peer-to-peer message. Every concrete type below
// implements it.
type Message interface {
	Command() Command
	encodePayload(w *bytes.Buffer) error
}

// MaxHashList and MaxBlockList bound how many entries a decoded message may
// carry, guarding against a malformed/hostile length prefix.
const (
	MaxHashList  = 1 << 16
	MaxBlockList = 1 << 12
	MaxTxList    = 1 << 16
)

// Ping carries an application-chosen nonce, echoed back in Pong.
type Ping struct{ Nonce uint32 }

// Command implements Message.
func (*Ping) Command() Command { return CmdPing }
func (p *Ping) encodePayload(w *bytes.Buffer) error {
	return wire.WriteElement(w, p.Nonce)
}

// Pong carries free-form text, conventionally the echoed Ping nonce
// rendered as a string.
type Pong struct{ Text string }

// Command implements Message.
func (*Pong) Command() Command { return CmdPong }
func (p *Pong) encodePayload(w *bytes.Buffer) error {
	return wire.WriteVarBytes(w, []byte(p.Text))
}

// NewBlockHashes announces block hashes the sender has but the receiver
// may not.
type NewBlockHashes struct{ Hashes []crypto.H256 }

// Command implements Message.
func (*NewBlockHashes) Command() Command { return CmdNewBlockHashes }
func (m *NewBlockHashes) encodePayload(w *bytes.Buffer) error {
	return encodeHashes(w, m.Hashes)
}

// GetBlocks requests the full blocks for the given hashes.
type GetBlocks struct{ Hashes []crypto.H256 }

// Command implements Message.
func (*GetBlocks) Command() Command { return CmdGetBlocks }
func (m *GetBlocks) encodePayload(w *bytes.Buffer) error {
	return encodeHashes(w, m.Hashes)
}

// Blocks carries full blocks, in response to GetBlocks.
type Blocks struct{ Blocks []*block.Block }

// Command implements Message.
func (*Blocks) Command() Command { return CmdBlocks }
func (m *Blocks) encodePayload(w *bytes.Buffer) error {
	if err := wire.WriteVarUint(w, uint64(len(m.Blocks))); err != nil {
		return err
	}
	for _, b := range m.Blocks {
		if err := b.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// NewTransactionHashes announces transaction hashes the sender has but the
// receiver may not.
type NewTransactionHashes struct{ Hashes []crypto.H256 }

// Command implements Message.
func (*NewTransactionHashes) Command() Command { return CmdNewTransactionHashes }
func (m *NewTransactionHashes) encodePayload(w *bytes.Buffer) error {
	return encodeHashes(w, m.Hashes)
}

// GetTransactions requests the full signed transactions for the given
// hashes.
type GetTransactions struct{ Hashes []crypto.H256 }

// Command implements Message.
func (*GetTransactions) Command() Command { return CmdGetTransactions }
func (m *GetTransactions) encodePayload(w *bytes.Buffer) error {
	return encodeHashes(w, m.Hashes)
}

// Transactions carries full signed transactions, in response to
// GetTransactions.
type Transactions struct{ Transactions []*transaction.SignedTransaction }

// Command implements Message.
func (*Transactions) Command() Command { return CmdTransactions }
func (m *Transactions) encodePayload(w *bytes.Buffer) error {
	if err := wire.WriteVarUint(w, uint64(len(m.Transactions))); err != nil {
		return err
	}
	for _, t := range m.Transactions {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func encodeHashes(w *bytes.Buffer, hashes []crypto.H256) error {
	if err := wire.WriteVarUint(w, uint64(len(hashes))); err != nil {
		return err
	}
	for _, h := range hashes {
		if err := wire.WriteElement(w, h[:]); err != nil {
			return err
		}
	}
	return nil
}

func decodeHashes(r *bytes.Reader, max uint64) ([]crypto.H256, error) {
	count, err := wire.ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	if count > max {
		return nil, errors.Errorf("protocol: hash list length %d exceeds max allowed %d", count, max)
	}
	hashes := make([]crypto.H256, count)
	for i := range hashes {
		var h [crypto.HashSize]byte
		if err := wire.ReadElement(r, h[:]); err != nil {
			return nil, err
		}
		hashes[i] = crypto.H256(h)
	}
	return hashes, nil
}

// Encode writes the canonical wire encoding of msg to w: a one-byte command
// tag followed by the message's payload.
func Encode(msg Message, w *bytes.Buffer) error {
	if err := wire.WriteElement(w, uint8(msg.Command())); err != nil {
		return err
	}
	return msg.encodePayload(w)
}

// Bytes returns the canonical wire encoding of msg.
func Bytes(msg Message) []byte {
	var buf bytes.Buffer
	if err := Encode(msg, &buf); err != nil {
		panic(err) // Encode of a well-formed Message never fails
	}
	return buf.Bytes()
}

// ErrUnknownCommand is returned by Decode when the command tag does not
// match any known Message variant.
var ErrUnknownCommand = errors.New("protocol: unknown message command")

// Decode reads a Message from r, the inverse of Encode.
func Decode(r *bytes.Reader) (Message, error) {
	var cmd uint8
	if err := wire.ReadElement(r, &cmd); err != nil {
		return nil, err
	}

	switch Command(cmd) {
	case CmdPing:
		var nonce uint32
		if err := wire.ReadElement(r, &nonce); err != nil {
			return nil, err
		}
		return &Ping{Nonce: nonce}, nil

	case CmdPong:
		text, err := wire.ReadVarBytes(r, wire.MaxMessagePayload)
		if err != nil {
			return nil, err
		}
		return &Pong{Text: string(text)}, nil

	case CmdNewBlockHashes:
		hashes, err := decodeHashes(r, MaxHashList)
		if err != nil {
			return nil, err
		}
		return &NewBlockHashes{Hashes: hashes}, nil

	case CmdGetBlocks:
		hashes, err := decodeHashes(r, MaxHashList)
		if err != nil {
			return nil, err
		}
		return &GetBlocks{Hashes: hashes}, nil

	case CmdBlocks:
		count, err := wire.ReadVarUint(r)
		if err != nil {
			return nil, err
		}
		if count > MaxBlockList {
			return nil, errors.Errorf("protocol: block list length %d exceeds max allowed %d", count, MaxBlockList)
		}
		blocks := make([]*block.Block, count)
		for i := range blocks {
			b := &block.Block{}
			if err := b.Decode(r); err != nil {
				return nil, err
			}
			blocks[i] = b
		}
		return &Blocks{Blocks: blocks}, nil

	case CmdNewTransactionHashes:
		hashes, err := decodeHashes(r, MaxHashList)
		if err != nil {
			return nil, err
		}
		return &NewTransactionHashes{Hashes: hashes}, nil

	case CmdGetTransactions:
		hashes, err := decodeHashes(r, MaxHashList)
		if err != nil {
			return nil, err
		}
		return &GetTransactions{Hashes: hashes}, nil

	case CmdTransactions:
		count, err := wire.ReadVarUint(r)
		if err != nil {
			return nil, err
		}
		if count > MaxTxList {
			return nil, errors.Errorf("protocol: transaction list length %d exceeds max allowed %d", count, MaxTxList)
		}
		txs := make([]*transaction.SignedTransaction, count)
		for i := range txs {
			st := &transaction.SignedTransaction{}
			if err := st.Decode(r); err != nil {
				return nil, err
			}
			txs[i] = st
		}
		return &Transactions{Transactions: txs}, nil
	}
	return nil, ErrUnknownCommand
}
