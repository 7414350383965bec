package mining

import (
	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/util/panics"
)

// Installer drains a miner's solved-block channel, validates and installs
// each block into the shared blockchain, invalidates the mempool against
// the new tip, and notifies the miner to resync its working parent.
type Installer struct {
	bc      *blockchain.Blockchain
	mp      *mempool.Mempool
	solved  <-chan *block.Block
	miner   *Handle
	onBlock func(crypto.H256)
}

// NewInstaller constructs an Installer reading solved blocks from solved.
// onBlock, if non-nil, is called with the hash of each successfully
// installed block, e.g. so the caller can broadcast NewBlockHashes.
func NewInstaller(bc *blockchain.Blockchain, mp *mempool.Mempool, solved <-chan *block.Block, miner *Handle, onBlock func(crypto.H256)) *Installer {
	return &Installer{bc: bc, mp: mp, solved: solved, miner: miner, onBlock: onBlock}
}

// Start spawns the installer's drain loop on its own panic-handled
// goroutine and returns immediately.
func (in *Installer) Start() {
	spawn(in.run)
}

func (in *Installer) run() {
	for {
		b, ok := <-in.solved
		if !ok {
			panics.Exit(log, "solved-block channel disconnected")
		}
		in.installOne(b)
	}
}

func (in *Installer) installOne(b *block.Block) {
	hash, err := in.bc.Insert(b)
	if err != nil {
		log.Warnf("dropping solved block: %s", err)
		return
	}

	in.mp.Invalidate(in.bc.TipState())

	// The miner advances its working parent optimistically as it solves, so
	// a block that became the tip needs no resync. A block that did not is a
	// losing fork: snap the miner back onto the canonical chain.
	if in.bc.Tip() != hash {
		in.miner.Update()
	}
	if in.onBlock != nil {
		in.onBlock(hash)
	}
}
