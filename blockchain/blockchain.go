// Package blockchain implements the account-model block tree: genesis/ICO
// construction, block insertion with validation and state replay, tip
// selection, and the queries the miner, network worker, and transaction
// generator read from.
package blockchain

import (
	"sync"

	"github.com/daglabs/accountchain/account"
	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/crypto"
	"github.com/pkg/errors"
)

// ICOBalance is the balance credited to the first of the three well-known
// ICO addresses at genesis; the other two start at zero balance, per the
// (10000, 0, 0) seeding.
const ICOBalance = 10000

// icoSeeds are the fixed seed fill bytes every node derives the ICO
// keypairs from: account i's 32-byte seed is icoSeeds[i] repeated. All
// nodes in a cluster must produce byte-identical genesis state, so these
// must never change.
var icoSeeds = [3]byte{0, 1, 2}

// ICOKeyPair deterministically derives the keypair for ICO account i.
func ICOKeyPair(i int) *crypto.KeyPair {
	var seed [crypto.SeedSize]byte
	for j := range seed {
		seed[j] = icoSeeds[i]
	}
	return crypto.KeyPairFromSeed(seed)
}

// ICOAddresses deterministically derives the three well-known ICO
// addresses, in seed order.
func ICOAddresses() [3]crypto.Address {
	var addrs [3]crypto.Address
	for i := range icoSeeds {
		addrs[i] = ICOKeyPair(i).Address
	}
	return addrs
}

type node struct {
	block  *block.Block
	height uint64
}

// Blockchain is the shared, mutex-guarded block tree. The zero value is not
// usable; construct with New.
//
// Lock order contract: callers that need both the blockchain lock and a
// mempool lock must acquire the blockchain lock first, always.
type Blockchain struct {
	dagLock sync.RWMutex

	nodes  map[crypto.H256]*node
	states map[crypto.H256]*account.State

	genesisHash crypto.H256
	tipHash     crypto.H256
	tipHeight   uint64
}

// New constructs the genesis block and its paired ICO state, per the fixed
// difficulty passed in (every node in a cluster must agree on this value).
func New(difficulty crypto.H256) *Blockchain {
	genesis := block.New(crypto.ZeroHash, 0, difficulty, 0, nil)
	genesisHash := genesis.Hash()

	// Only the first ICO address (derived from seed [0]) is funded at
	// genesis; the other two start at (0, 0).
	ico := account.New()
	for i, addr := range ICOAddresses() {
		var balance uint64
		if i == 0 {
			balance = ICOBalance
		}
		ico.Set(addr, account.Entry{Nonce: 0, Balance: balance})
	}

	bc := &Blockchain{
		nodes:       map[crypto.H256]*node{genesisHash: {block: genesis, height: 0}},
		states:      map[crypto.H256]*account.State{genesisHash: ico},
		genesisHash: genesisHash,
		tipHash:     genesisHash,
		tipHeight:   0,
	}
	return bc
}

// ErrUnknownParent is returned by Insert when block.Header.Parent is not
// already present in the chain.
var ErrUnknownParent = errors.New("blockchain: block's parent is not present")

// ErrDifficultyMismatch is returned when a block's difficulty does not
// equal its parent's.
var ErrDifficultyMismatch = errors.New("blockchain: block difficulty does not match parent difficulty")

// ErrEmptyBody is returned when a block has no transactions.
var ErrEmptyBody = errors.New("blockchain: block body is empty")

// ErrBadProofOfWork is returned when a block's hash exceeds its declared
// difficulty target.
var ErrBadProofOfWork = errors.New("blockchain: block hash exceeds difficulty target")

// ErrBadMerkleRoot is returned when a block's header merkle root does not
// match the recomputed root of its content.
var ErrBadMerkleRoot = errors.New("blockchain: merkle root does not match content")

// Insert validates and inserts b, recording its post-state and updating the
// tip per the strict-greater-height rule (ties favor the incumbent tip;
// becoming a child of the current tip always advances it). It requires
// b.Header.Parent already present; returns ErrUnknownParent otherwise. It
// takes the blockchain lock for its full duration, a single critical
// section covering validation, state replay, and tip update.
func (bc *Blockchain) Insert(b *block.Block) (crypto.H256, error) {
	bc.dagLock.Lock()
	defer bc.dagLock.Unlock()

	hash := b.Hash()
	if _, exists := bc.nodes[hash]; exists {
		return hash, nil
	}

	parentNode, ok := bc.nodes[b.Header.Parent]
	if !ok {
		return crypto.H256{}, ErrUnknownParent
	}
	parentState := bc.states[b.Header.Parent]

	if err := bc.verifyBlock(b, parentNode, parentState); err != nil {
		return crypto.H256{}, err
	}

	newState, err := updateState(parentState, b)
	if err != nil {
		return crypto.H256{}, err
	}

	height := parentNode.height + 1
	bc.nodes[hash] = &node{block: b, height: height}
	bc.states[hash] = newState

	if b.Header.Parent == bc.tipHash || height > bc.tipHeight {
		bc.tipHash = hash
		bc.tipHeight = height
	}
	return hash, nil
}

// verifyBlock checks b's difficulty, body, proof of work, merkle root, and
// every contained transaction against parentState, the state after
// parentNode's block. Validating against the parent's state rather than
// the current tip's keeps blocks on non-tip branches verifiable.
func (bc *Blockchain) verifyBlock(b *block.Block, parentNode *node, parentState *account.State) error {
	if b.Header.Difficulty != parentNode.block.Header.Difficulty {
		return ErrDifficultyMismatch
	}
	if len(b.Content) == 0 {
		return ErrEmptyBody
	}
	if !b.Hash().LessOrEqual(b.Header.Difficulty) {
		return ErrBadProofOfWork
	}
	if b.Header.MerkleRoot != b.MerkleRoot() {
		return ErrBadMerkleRoot
	}

	replay := parentState.Clone()
	for _, st := range b.Content {
		if err := st.Verify(replay); err != nil {
			return err
		}
		if err := replay.Apply(st.T.Sender, st.T.Receiver, st.T.Value); err != nil {
			return err
		}
	}
	return nil
}

// updateState replays b's transactions on top of parentState, returning the
// resulting post-state. The transactions have already been validated by
// verifyBlock against the same parentState, so replay here cannot fail;
// an error here indicates an internal inconsistency between verifyBlock and
// updateState and is returned rather than panicked, so the caller can
// reject the block instead of crashing the node.
func updateState(parentState *account.State, b *block.Block) (*account.State, error) {
	next := parentState.Clone()
	for _, st := range b.Content {
		if err := next.Apply(st.T.Sender, st.T.Receiver, st.T.Value); err != nil {
			return nil, errors.Wrap(err, "blockchain: state replay diverged from verification")
		}
	}
	return next, nil
}

// GetBlock returns the block stored under hash and whether it was found.
func (bc *Blockchain) GetBlock(hash crypto.H256) (*block.Block, bool) {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()
	n, ok := bc.nodes[hash]
	if !ok {
		return nil, false
	}
	return n.block, true
}

// Contains reports whether hash is present in the chain.
func (bc *Blockchain) Contains(hash crypto.H256) bool {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()
	_, ok := bc.nodes[hash]
	return ok
}

// Tip returns the current tip's hash.
func (bc *Blockchain) Tip() crypto.H256 {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()
	return bc.tipHash
}

// TipHeight returns the current tip's height.
func (bc *Blockchain) TipHeight() uint64 {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()
	return bc.tipHeight
}

// TipState returns the account state immediately after the current tip.
func (bc *Blockchain) TipState() *account.State {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()
	return bc.states[bc.tipHash]
}

// StateAtHash returns the account state recorded after the block stored
// under hash, and whether that block is known.
func (bc *Blockchain) StateAtHash(hash crypto.H256) (*account.State, bool) {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()
	state, ok := bc.states[hash]
	return state, ok
}

// StateAt returns the account state at the block depth back from the tip
// along the currently selected chain (depth 0 is the tip itself), and
// whether that depth exists.
func (bc *Blockchain) StateAt(depth uint64) (*account.State, bool) {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()

	hash := bc.tipHash
	for i := uint64(0); i < depth; i++ {
		n, ok := bc.nodes[hash]
		if !ok || hash == bc.genesisHash {
			return nil, false
		}
		hash = n.block.Header.Parent
	}
	state, ok := bc.states[hash]
	return state, ok
}

// AllBlocksInLongestChain returns every block from genesis to the current
// tip, in that order.
func (bc *Blockchain) AllBlocksInLongestChain() []*block.Block {
	bc.dagLock.RLock()
	defer bc.dagLock.RUnlock()

	var chain []*block.Block
	hash := bc.tipHash
	for {
		n := bc.nodes[hash]
		chain = append(chain, n.block)
		if hash == bc.genesisHash {
			break
		}
		hash = n.block.Header.Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// GenesisHash returns the hash of the genesis block.
func (bc *Blockchain) GenesisHash() crypto.H256 {
	return bc.genesisHash
}
