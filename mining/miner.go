// Package mining implements the block-producing worker: it assembles a
// candidate block from the mempool, searches the nonce space for one
// satisfying the current difficulty, and emits solved blocks on a
// caller-supplied channel for the installer to validate and insert. The
// send blocks while that channel is full.
package mining

import (
	"math/rand"
	"time"

	"github.com/daglabs/accountchain/account"
	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/statemachine"
)

// MaxTransactionsPerBlock bounds the number of transactions assembled into
// a single candidate block.
const MaxTransactionsPerBlock = 3

// Handle drives a running Miner's control loop.
type Handle struct {
	control *statemachine.ControlHandle
}

// Start signals the miner to begin continuous mining with the given
// interval (microseconds of sleep after every mining iteration, each of
// which tries one nonce; 0 runs flat-out).
func (h *Handle) Start(intervalMicros uint64) { h.control.Start(intervalMicros) }

// Update signals the miner to resync its working parent and difficulty
// from the blockchain's current tip before its next nonce search, e.g.
// because a block arrived from the network and advanced the tip.
func (h *Handle) Update() { h.control.Update() }

// Exit signals the miner to shut down.
func (h *Handle) Exit() { h.control.Exit() }

// Miner owns the nonce-search loop. It chains optimistically: after
// emitting a solved block it advances its own working parent and the
// state that results from the block's transactions immediately, without
// waiting for the installer to validate and insert it into the shared
// blockchain. Update resyncs it to the blockchain's actual tip, e.g. after
// a network-received block changes the tip out from under it.
type Miner struct {
	bc     *blockchain.Blockchain
	mp     *mempool.Mempool
	rng    *rand.Rand
	solved chan<- *block.Block

	control <-chan statemachine.Signal

	parent      crypto.H256
	parentState *account.State
	difficulty  crypto.H256
}

// New constructs a Miner reading from bc and mp, emitting solved blocks on
// solved (a channel the caller owns the receive side of and sizes; the
// miner blocks on it while it is full).
func New(bc *blockchain.Blockchain, mp *mempool.Mempool, solved chan<- *block.Block) (*Miner, *Handle) {
	controlHandle, control := statemachine.NewControlHandle()
	m := &Miner{
		bc:      bc,
		mp:      mp,
		rng:     rand.New(rand.NewSource(rand.Int63())),
		solved:  solved,
		control: control,
	}
	m.resync()
	return m, &Handle{control: controlHandle}
}

// Start spawns the miner's control loop on its own panic-handled goroutine
// and returns immediately.
func (m *Miner) Start() {
	spawn(m.run)
}

func (m *Miner) run() {
	log.Infof("Miner initialized into paused mode")
	statemachine.Loop(m.control, m.mineOne, sleepMicros, m.resync)
}

// resync reloads parent, parentState, and difficulty from the
// blockchain's current tip.
func (m *Miner) resync() {
	tipHash := m.bc.Tip()
	tipBlock, ok := m.bc.GetBlock(tipHash)
	tipState, stateOK := m.bc.StateAtHash(tipHash)
	if !ok || !stateOK {
		log.Errorf("tip block %s missing from chain", tipHash)
		return
	}
	m.parent = tipHash
	m.parentState = tipState
	m.difficulty = tipBlock.Header.Difficulty
}

// mineOne assembles a candidate block on top of the miner's current working
// parent and tries a single random nonce against its difficulty. A miss
// gives up the round; the next iteration rebuilds the candidate with a
// fresh timestamp and nonce, so control signals stay responsive however
// hard the target is. On a hit it emits the solved block and advances the
// working parent and state to it.
func (m *Miner) mineOne() {
	content := m.mp.Candidates(MaxTransactionsPerBlock, m.parentState)
	if len(content) == 0 {
		return
	}
	timestampMS := uint64(time.Now().UnixMilli())

	candidate := block.New(m.parent, m.rng.Uint32(), m.difficulty, timestampMS, content)
	if !candidate.Hash().LessOrEqual(m.difficulty) {
		return
	}

	nextState := m.parentState.Clone()
	for _, st := range content {
		if err := nextState.Apply(st.T.Sender, st.T.Receiver, st.T.Value); err != nil {
			log.Errorf("mined block's own transactions failed replay: %s", err)
			return
		}
	}
	m.solved <- candidate
	m.parent = candidate.Hash()
	m.parentState = nextState
}

func sleepMicros(intervalMicros uint64) {
	time.Sleep(time.Duration(intervalMicros) * time.Microsecond)
}
