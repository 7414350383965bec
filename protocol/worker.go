package protocol

import (
	"bytes"
	"fmt"

	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/transaction"
	"github.com/daglabs/accountchain/util/panics"
)

// Pool is the network worker pool: a bounded inbound channel drained by a
// fixed number of goroutines, each decoding and dispatching messages against
// the shared blockchain and mempool. Every worker shares the same orphan
// buffer, so a block parked by one worker is still found once its parent is
// installed by another.
type Pool struct {
	bc          *blockchain.Blockchain
	mp          *mempool.Mempool
	server      ServerHandle
	orphans     *OrphanBuffer
	onTipChange func()

	inbound chan InboundMessage
	workers int
}

// NewPool returns a Pool with an inbound channel of the given buffer size,
// ready to be started with Start. onTipChange, if non-nil, is called
// whenever a received block moves the blockchain's tip, e.g. so the caller
// can signal the miner to resync off the new tip; it must not block.
func NewPool(bc *blockchain.Blockchain, mp *mempool.Mempool, server ServerHandle, onTipChange func(), bufferSize, workers int) *Pool {
	return &Pool{
		bc:          bc,
		mp:          mp,
		server:      server,
		orphans:     NewOrphanBuffer(),
		onTipChange: onTipChange,
		inbound:     make(chan InboundMessage, bufferSize),
		workers:     workers,
	}
}

// Submit enqueues an inbound message for dispatch. It blocks if the inbound
// channel is full, applying backpressure to the transport.
func (p *Pool) Submit(msg InboundMessage) {
	p.inbound <- msg
}

// Start launches the worker pool's goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		spawn(p.run)
	}
}

func (p *Pool) run() {
	for {
		msg, ok := <-p.inbound
		if !ok {
			panics.Exit(log, "inbound message channel disconnected")
		}
		decoded, err := Decode(bytes.NewReader(msg.Bytes))
		if err != nil {
			log.Warnf("dropping malformed message: %s", err)
			continue
		}
		p.dispatch(decoded, msg.Peer)
	}
}

func (p *Pool) dispatch(msg Message, peer PeerHandle) {
	switch m := msg.(type) {
	case *Ping:
		peer.Write(&Pong{Text: fmt.Sprintf("%d", m.Nonce)})

	case *Pong:
		log.Debugf("received pong: %s", m.Text)

	case *NewBlockHashes:
		p.handleNewBlockHashes(m, peer)

	case *GetBlocks:
		p.handleGetBlocks(m, peer)

	case *Blocks:
		p.handleBlocks(m, peer)

	case *NewTransactionHashes:
		p.handleNewTransactionHashes(m, peer)

	case *GetTransactions:
		p.handleGetTransactions(m, peer)

	case *Transactions:
		p.handleTransactions(m)

	default:
		log.Warnf("dispatch: unhandled message type %T", msg)
	}
}

func (p *Pool) handleNewBlockHashes(m *NewBlockHashes, peer PeerHandle) {
	var missing []crypto.H256
	for _, hash := range m.Hashes {
		if !p.bc.Contains(hash) {
			missing = append(missing, hash)
		}
	}
	if len(missing) > 0 {
		req := &GetBlocks{Hashes: missing}
		peer.Write(req)
		p.server.Broadcast(req)
	}
}

func (p *Pool) handleGetBlocks(m *GetBlocks, peer PeerHandle) {
	var found []*block.Block
	for _, hash := range m.Hashes {
		if b, ok := p.bc.GetBlock(hash); ok {
			found = append(found, b)
		}
	}
	if len(found) > 0 {
		reply := &Blocks{Blocks: found}
		peer.Write(reply)
		p.server.Broadcast(reply)
	}
}

// handleBlocks inserts each received block, parking it in the shared orphan
// buffer when its parent is not yet known, and draining any orphans whose
// parent an insertion just satisfied (breadth-first, since a drained child
// may itself unblock grandchildren). All newly accepted hashes are
// announced in one NewBlockHashes broadcast at the end, and a tip change
// anywhere in the batch is reported through onTipChange once.
func (p *Pool) handleBlocks(m *Blocks, peer PeerHandle) {
	tipBefore := p.bc.Tip()
	var accepted []crypto.H256
	queue := append([]*block.Block{}, m.Blocks...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		if !b.Hash().LessOrEqual(b.Header.Difficulty) {
			continue
		}
		if p.bc.Contains(b.Hash()) {
			continue
		}

		hash, err := p.bc.Insert(b)
		if err == blockchain.ErrUnknownParent {
			p.orphans.Add(b)
			req := &GetBlocks{Hashes: []crypto.H256{b.Header.Parent}}
			peer.Write(req)
			p.server.Broadcast(req)
			continue
		}
		if err != nil {
			log.Warnf("dropping invalid block: %s", err)
			continue
		}

		included := make([]crypto.H256, len(b.Content))
		for i, st := range b.Content {
			included[i] = st.Hash()
		}
		p.mp.RemoveAll(included)
		p.mp.Invalidate(p.bc.TipState())

		accepted = append(accepted, hash)
		queue = append(queue, p.orphans.Drain(hash)...)
	}
	if p.onTipChange != nil && p.bc.Tip() != tipBefore {
		p.onTipChange()
	}
	if len(accepted) > 0 {
		p.server.Broadcast(&NewBlockHashes{Hashes: accepted})
	}
}

func (p *Pool) handleNewTransactionHashes(m *NewTransactionHashes, peer PeerHandle) {
	var missing []crypto.H256
	for _, hash := range m.Hashes {
		if _, ok := p.mp.Get(hash); !ok {
			missing = append(missing, hash)
		}
	}
	if len(missing) > 0 {
		peer.Write(&GetTransactions{Hashes: missing})
	}
}

func (p *Pool) handleGetTransactions(m *GetTransactions, peer PeerHandle) {
	var found []*transaction.SignedTransaction
	for _, hash := range m.Hashes {
		if st, ok := p.mp.Get(hash); ok {
			found = append(found, st)
		}
	}
	if len(found) > 0 {
		reply := &Transactions{Transactions: found}
		peer.Write(reply)
		p.server.Broadcast(reply)
	}
}

func (p *Pool) handleTransactions(m *Transactions) {
	var admitted []crypto.H256
	for _, st := range m.Transactions {
		hash, err := p.mp.Insert(st, p.bc.TipState())
		if err != nil {
			log.Warnf("dropping invalid transaction: %s", err)
			continue
		}
		admitted = append(admitted, hash)
	}
	if len(admitted) > 0 {
		p.server.Broadcast(&NewTransactionHashes{Hashes: admitted})
	}
}
