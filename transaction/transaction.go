// Package transaction implements the account-model Transaction and its
// signed envelope, including canonical serialization, Ed25519 signing, and
// the admission checks applied against an account.State.
package transaction

import (
	"bytes"
	"io"

	"github.com/daglabs/accountchain/account"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/wire"
	"github.com/pkg/errors"
)

// Transaction is an intent to move value from sender to receiver. Nonce is
// the sender's intended post-state nonce, i.e. sender_state_nonce + 1.
type Transaction struct {
	Sender   crypto.Address
	Nonce    uint64
	Receiver crypto.Address
	Value    uint64
}

// Encode writes the canonical serialization of t to w.
func (t *Transaction) Encode(w *bytes.Buffer) error {
	if err := wire.WriteElement(w, t.Sender[:]); err != nil {
		return err
	}
	if err := wire.WriteElement(w, t.Nonce); err != nil {
		return err
	}
	if err := wire.WriteElement(w, t.Receiver[:]); err != nil {
		return err
	}
	return wire.WriteElement(w, t.Value)
}

// Decode reads a Transaction from r, the inverse of Encode.
func (t *Transaction) Decode(r *bytes.Reader) error {
	var sender, receiver [crypto.AddressSize]byte
	if err := readFixed(r, sender[:]); err != nil {
		return err
	}
	if err := wire.ReadElement(r, &t.Nonce); err != nil {
		return err
	}
	if err := readFixed(r, receiver[:]); err != nil {
		return err
	}
	if err := wire.ReadElement(r, &t.Value); err != nil {
		return err
	}
	t.Sender = crypto.Address(sender)
	t.Receiver = crypto.Address(receiver)
	return nil
}

func readFixed(r *bytes.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// Bytes returns the canonical serialization of t.
func (t *Transaction) Bytes() []byte {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		panic(err) // Encode of a well-formed Transaction never fails
	}
	return buf.Bytes()
}

// SignedTransaction wraps a Transaction with the sender's signature and
// public key.
type SignedTransaction struct {
	T         Transaction
	Signature []byte
	PublicKey []byte
}

// Sign produces a SignedTransaction over t using kp, the byte-exact
// construction the admission checks below expect.
func Sign(t Transaction, kp *crypto.KeyPair) *SignedTransaction {
	sig := kp.Sign(t.Bytes())
	return &SignedTransaction{
		T:         t,
		Signature: sig,
		PublicKey: append([]byte(nil), kp.PublicKey...),
	}
}

// Hash returns the hash identifying this signed transaction, used as its
// mempool key and in gossip messages.
func (st *SignedTransaction) Hash() crypto.H256 {
	var buf bytes.Buffer
	_ = st.T.Encode(&buf)
	_ = wire.WriteVarBytes(&buf, st.Signature)
	_ = wire.WriteVarBytes(&buf, st.PublicKey)
	return crypto.HashBytes(buf.Bytes())
}

// MaxSignedTransactionFieldSize bounds the length of a decoded signature or
// public key, guarding against a malformed length prefix.
const MaxSignedTransactionFieldSize = 4096

// Encode writes the canonical serialization of a SignedTransaction to w:
// the wrapped Transaction followed by length-prefixed signature and public
// key.
func (st *SignedTransaction) Encode(w *bytes.Buffer) error {
	if err := st.T.Encode(w); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, st.Signature); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, st.PublicKey)
}

// Decode reads a SignedTransaction from r, the inverse of Encode.
func (st *SignedTransaction) Decode(r *bytes.Reader) error {
	if err := st.T.Decode(r); err != nil {
		return err
	}
	sig, err := wire.ReadVarBytes(r, MaxSignedTransactionFieldSize)
	if err != nil {
		return err
	}
	pubKey, err := wire.ReadVarBytes(r, MaxSignedTransactionFieldSize)
	if err != nil {
		return err
	}
	st.Signature = sig
	st.PublicKey = pubKey
	return nil
}

var (
	// ErrBadSignature is returned when the Ed25519 signature does not
	// verify over the transaction bytes.
	ErrBadSignature = errors.New("transaction: signature does not verify")
	// ErrSenderAddressMismatch is returned when Address::from(pub_key) !=
	// t.sender.
	ErrSenderAddressMismatch = errors.New("transaction: sender address does not match public key")
	// ErrSenderUnknown is returned when the sender has no entry in the
	// state being verified against.
	ErrSenderUnknown = errors.New("transaction: sender unknown in state")
	// ErrInsufficientBalance is returned when the sender's balance is
	// less than the transaction's value.
	ErrInsufficientBalance = errors.New("transaction: insufficient sender balance")
	// ErrNonceMismatch is returned when the transaction's nonce is not
	// exactly the sender's current state nonce plus one.
	ErrNonceMismatch = errors.New("transaction: nonce does not match expected sender nonce + 1")
)

// Verify checks a SignedTransaction's cryptographic and admission
// invariants against currState: the Ed25519 signature over the canonical
// transaction bytes, that Address::from(pub_key) == t.sender, that the
// sender exists in currState, that the sender's balance is at least the
// transaction's value, and that the nonce equals the sender's current
// state nonce plus one.
func (st *SignedTransaction) Verify(currState *account.State) error {
	if !crypto.VerifySignature(st.PublicKey, st.T.Bytes(), st.Signature) {
		return ErrBadSignature
	}
	if crypto.AddressFromPublicKey(st.PublicKey) != st.T.Sender {
		return ErrSenderAddressMismatch
	}

	entry, ok := currState.Get(st.T.Sender)
	if !ok {
		return ErrSenderUnknown
	}
	if entry.Balance < st.T.Value {
		return ErrInsufficientBalance
	}
	if entry.Nonce+1 != st.T.Nonce {
		return ErrNonceMismatch
	}
	return nil
}
