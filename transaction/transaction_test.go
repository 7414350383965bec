package transaction

import (
	"bytes"
	"testing"

	"github.com/daglabs/accountchain/account"
	"github.com/daglabs/accountchain/crypto"
)

func keyPair(seedByte byte) *crypto.KeyPair {
	var seed [crypto.SeedSize]byte
	seed[0] = seedByte
	return crypto.KeyPairFromSeed(seed)
}

func TestTransactionEncodeDecodeRoundTrip(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{
		Sender:   sender.Address,
		Nonce:    7,
		Receiver: keyPair(2).Address,
		Value:    1234,
	}

	var buf bytes.Buffer
	if err := tx.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded Transaction
	if err := decoded.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != tx {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, tx)
	}
}

func TestSignedTransactionEncodeDecodeRoundTrip(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 10}
	signed := Sign(tx, sender)

	var buf bytes.Buffer
	if err := signed.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded SignedTransaction
	if err := decoded.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.T != signed.T {
		t.Fatalf("transaction mismatch: got %+v, want %+v", decoded.T, signed.T)
	}
	if !bytes.Equal(decoded.Signature, signed.Signature) {
		t.Fatalf("signature mismatch")
	}
	if !bytes.Equal(decoded.PublicKey, signed.PublicKey) {
		t.Fatalf("public key mismatch")
	}
}

func newState(sender crypto.Address, balance, nonce uint64) *account.State {
	s := account.New()
	s.Set(sender, account.Entry{Nonce: nonce, Balance: balance})
	return s
}

func TestVerifySucceeds(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender)
	state := newState(sender.Address, 100, 0)

	if err := signed.Verify(state); err != nil {
		t.Fatalf("expected verify to succeed, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender)
	signed.Signature[0] ^= 0xff
	state := newState(sender.Address, 100, 0)

	if err := signed.Verify(state); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender)
	signed.T.Value = 999
	state := newState(sender.Address, 100, 0)

	if err := signed.Verify(state); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature for tampered value, got %v", err)
	}
}

func TestVerifyRejectsSenderAddressMismatch(t *testing.T) {
	sender := keyPair(1)
	impersonated := keyPair(3)
	tx := Transaction{Sender: impersonated.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender) // signed by sender but claims impersonated's address
	state := newState(impersonated.Address, 100, 0)

	if err := signed.Verify(state); err != ErrSenderAddressMismatch {
		t.Fatalf("expected ErrSenderAddressMismatch, got %v", err)
	}
}

func TestVerifyRejectsUnknownSender(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender)
	state := account.New()

	if err := signed.Verify(state); err != ErrSenderUnknown {
		t.Fatalf("expected ErrSenderUnknown, got %v", err)
	}
}

func TestVerifyRejectsInsufficientBalance(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 1, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender)
	state := newState(sender.Address, 10, 0)

	if err := signed.Verify(state); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestVerifyRejectsNonceMismatch(t *testing.T) {
	sender := keyPair(1)
	tx := Transaction{Sender: sender.Address, Nonce: 5, Receiver: keyPair(2).Address, Value: 50}
	signed := Sign(tx, sender)
	state := newState(sender.Address, 100, 0)

	if err := signed.Verify(state); err != ErrNonceMismatch {
		t.Fatalf("expected ErrNonceMismatch, got %v", err)
	}
}
