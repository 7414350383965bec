package protocol

import (
	"sync"

	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/crypto"
)

// OrphanBuffer holds blocks received out of order: a block whose parent is
// not yet in the blockchain is parked here, keyed by that missing parent's
// hash, until the parent arrives. A single OrphanBuffer is shared across
// every worker goroutine so an orphan parked by one worker is still found
// once its parent is installed by another.
type OrphanBuffer struct {
	mu       sync.Mutex
	children map[crypto.H256][]*block.Block
}

// NewOrphanBuffer returns an empty OrphanBuffer.
func NewOrphanBuffer() *OrphanBuffer {
	return &OrphanBuffer{children: make(map[crypto.H256][]*block.Block)}
}

// Add parks b under its declared parent hash.
func (o *OrphanBuffer) Add(b *block.Block) {
	o.mu.Lock()
	defer o.mu.Unlock()
	parent := b.Header.Parent
	o.children[parent] = append(o.children[parent], b)
}

// Drain removes and returns every block parked under parentHash, if any.
func (o *OrphanBuffer) Drain(parentHash crypto.H256) []*block.Block {
	o.mu.Lock()
	defer o.mu.Unlock()
	children := o.children[parentHash]
	delete(o.children, parentHash)
	return children
}
