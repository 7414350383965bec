// Package account implements the per-block account-state snapshot: a
// mapping from Address to (nonce, balance) produced by replaying a block's
// transactions on top of its parent's state.
package account

import (
	"github.com/daglabs/accountchain/crypto"
	"github.com/pkg/errors"
)

// Entry is one account's nonce and balance.
type Entry struct {
	Nonce   uint64
	Balance uint64
}

// State is an immutable-once-built snapshot of every account's nonce and
// balance after a specific block's transactions have been applied. Callers
// must treat a State as read-only; Clone it before mutating.
type State struct {
	accounts map[crypto.Address]Entry
}

// New returns an empty account state.
func New() *State {
	return &State{accounts: make(map[crypto.Address]Entry)}
}

// Clone returns a deep copy of s, suitable as the starting point for
// deriving a child block's state.
func (s *State) Clone() *State {
	clone := make(map[crypto.Address]Entry, len(s.accounts))
	for addr, entry := range s.accounts {
		clone[addr] = entry
	}
	return &State{accounts: clone}
}

// Get returns the account entry for addr and whether it exists.
func (s *State) Get(addr crypto.Address) (Entry, bool) {
	e, ok := s.accounts[addr]
	return e, ok
}

// Set creates or overwrites the account entry for addr.
func (s *State) Set(addr crypto.Address, entry Entry) {
	s.accounts[addr] = entry
}

// Accounts returns a snapshot copy of the underlying address-to-entry map,
// for callers that need to enumerate known addresses (state inspection,
// tests).
func (s *State) Accounts() map[crypto.Address]Entry {
	out := make(map[crypto.Address]Entry, len(s.accounts))
	for addr, entry := range s.accounts {
		out[addr] = entry
	}
	return out
}

// TotalBalance sums every account's balance, used by tests to assert
// conservation of the ICO total across every reachable state.
func (s *State) TotalBalance() uint64 {
	var total uint64
	for _, e := range s.accounts {
		total += e.Balance
	}
	return total
}

// ErrInsufficientBalance is returned by Apply when a transfer would
// overdraw the sender's balance.
var ErrInsufficientBalance = errors.New("account: sender balance insufficient for transfer")

// ErrSenderUnknown is returned by Apply when the sender has no account
// entry yet; senders must exist before they transact.
var ErrSenderUnknown = errors.New("account: sender has no account entry")

// Apply debits sender and credits receiver by value, incrementing the
// sender's nonce by exactly 1. The receiver is created with nonce 0 if it
// does not yet exist. It requires sender_balance >= value and that the
// sender already exists.
//
// sender and receiver may be the same address: the debit is written back
// before the receiver entry is read, so a self-transfer only bumps the
// nonce and leaves the balance unchanged rather than crediting value out
// of thin air.
func (s *State) Apply(sender, receiver crypto.Address, value uint64) error {
	senderEntry, ok := s.accounts[sender]
	if !ok {
		return ErrSenderUnknown
	}
	if senderEntry.Balance < value {
		return ErrInsufficientBalance
	}

	senderEntry.Nonce++
	senderEntry.Balance -= value
	s.accounts[sender] = senderEntry

	receiverEntry := s.accounts[receiver] // zero value (0, 0) if absent; reflects the debit above when sender == receiver
	receiverEntry.Balance += value
	s.accounts[receiver] = receiverEntry
	return nil
}
