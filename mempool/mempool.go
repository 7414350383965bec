// Package mempool implements the shared pool of admitted, not-yet-mined
// transactions. Admission requires a transaction to verify against the
// blockchain tip's state; entries are dropped on inclusion in an installed
// block or invalidation by a new tip.
package mempool

import (
	"sync"

	"github.com/daglabs/accountchain/account"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/transaction"
)

// Mempool is the shared, mutex-guarded transaction pool.
//
// Callers that need both the blockchain lock and this lock must acquire
// the blockchain lock first, always.
type Mempool struct {
	mu           sync.RWMutex
	transactions map[crypto.H256]*transaction.SignedTransaction
}

// New returns an empty mempool.
func New() *Mempool {
	return &Mempool{transactions: make(map[crypto.H256]*transaction.SignedTransaction)}
}

// Insert admits st into the pool if it verifies against tipState. Returns
// the transaction's hash, or the verification error if st was not admitted.
func (mp *Mempool) Insert(st *transaction.SignedTransaction, tipState *account.State) (crypto.H256, error) {
	if err := st.Verify(tipState); err != nil {
		return crypto.H256{}, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()
	hash := st.Hash()
	mp.transactions[hash] = st
	return hash, nil
}

// Get returns the transaction stored under hash and whether it was found.
func (mp *Mempool) Get(hash crypto.H256) (*transaction.SignedTransaction, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	st, ok := mp.transactions[hash]
	return st, ok
}

// Remove drops hash from the pool, e.g. once its transaction is included in
// an installed block.
func (mp *Mempool) Remove(hash crypto.H256) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	delete(mp.transactions, hash)
}

// RemoveAll drops every hash in hashes from the pool in one critical
// section.
func (mp *Mempool) RemoveAll(hashes []crypto.H256) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	for _, h := range hashes {
		delete(mp.transactions, h)
	}
}

// Len returns the number of transactions currently admitted.
func (mp *Mempool) Len() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return len(mp.transactions)
}

// Candidates returns up to max admitted transactions suitable for a new
// block mined on top of tipState: each must still verify against
// tipState, and no two share a sender public key, matching the
// one-transaction-per-sender-per-block assembly rule the miner applies.
// Order is unspecified and may differ between calls on the same pool.
func (mp *Mempool) Candidates(max int, tipState *account.State) []*transaction.SignedTransaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	seenSenders := make(map[crypto.Address]bool)
	candidates := make([]*transaction.SignedTransaction, 0, max)
	for _, st := range mp.transactions {
		if len(candidates) >= max {
			break
		}
		if seenSenders[st.T.Sender] {
			continue
		}
		if err := st.Verify(tipState); err != nil {
			continue
		}
		seenSenders[st.T.Sender] = true
		candidates = append(candidates, st)
	}
	return candidates
}

// Invalidate drops every admitted transaction the new tip's state has made
// unusable: a stale nonce (the sender's state nonce has caught up to or
// passed the transaction's) or an insufficient balance. A transaction
// whose nonce is still ahead of the sender's state nonce stays in the
// pool; it may become includable once the gap fills.
func (mp *Mempool) Invalidate(newTipState *account.State) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	for hash, st := range mp.transactions {
		entry, ok := newTipState.Get(st.T.Sender)
		if !ok || entry.Nonce >= st.T.Nonce || entry.Balance < st.T.Value {
			delete(mp.transactions, hash)
		}
	}
}
