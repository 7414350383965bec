package protocol

import (
	"bytes"
	"testing"

	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/transaction"
)

func keyPair(seedByte byte) *crypto.KeyPair {
	var seed [crypto.SeedSize]byte
	seed[0] = seedByte
	return crypto.KeyPairFromSeed(seed)
}

func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(msg, &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Command() != msg.Command() {
		t.Fatalf("command mismatch: got %s, want %s", decoded.Command(), msg.Command())
	}
	return decoded
}

func TestPingPongRoundTrip(t *testing.T) {
	decoded := roundTrip(t, &Ping{Nonce: 42})
	if decoded.(*Ping).Nonce != 42 {
		t.Fatalf("expected nonce 42")
	}

	decoded = roundTrip(t, &Pong{Text: "42"})
	if decoded.(*Pong).Text != "42" {
		t.Fatalf("expected text \"42\"")
	}
}

func TestHashListMessagesRoundTrip(t *testing.T) {
	hashes := []crypto.H256{crypto.HashBytes([]byte("a")), crypto.HashBytes([]byte("b"))}

	for _, msg := range []Message{
		&NewBlockHashes{Hashes: hashes},
		&GetBlocks{Hashes: hashes},
		&NewTransactionHashes{Hashes: hashes},
		&GetTransactions{Hashes: hashes},
	} {
		decoded := roundTrip(t, msg)
		var got []crypto.H256
		switch d := decoded.(type) {
		case *NewBlockHashes:
			got = d.Hashes
		case *GetBlocks:
			got = d.Hashes
		case *NewTransactionHashes:
			got = d.Hashes
		case *GetTransactions:
			got = d.Hashes
		}
		if len(got) != len(hashes) {
			t.Fatalf("hash count mismatch for %s", msg.Command())
		}
		for i := range hashes {
			if got[i] != hashes[i] {
				t.Fatalf("hash %d mismatch for %s", i, msg.Command())
			}
		}
	}
}

func TestBlocksMessageRoundTrip(t *testing.T) {
	b := block.New(crypto.ZeroHash, 1, crypto.H256{0xff}, 100, nil)
	decoded := roundTrip(t, &Blocks{Blocks: []*block.Block{b}})
	got := decoded.(*Blocks)
	if len(got.Blocks) != 1 || got.Blocks[0].Hash() != b.Hash() {
		t.Fatalf("expected decoded block to match original")
	}
}

func TestTransactionsMessageRoundTrip(t *testing.T) {
	sender := keyPair(1)
	tx := transaction.Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 5}
	signed := transaction.Sign(tx, sender)

	decoded := roundTrip(t, &Transactions{Transactions: []*transaction.SignedTransaction{signed}})
	got := decoded.(*Transactions)
	if len(got.Transactions) != 1 || got.Transactions[0].Hash() != signed.Hash() {
		t.Fatalf("expected decoded transaction to match original")
	}
}

func TestDecodeRejectsUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0xfe)
	if _, err := Decode(bytes.NewReader(buf.Bytes())); err != ErrUnknownCommand {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}
