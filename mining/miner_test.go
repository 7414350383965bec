package mining

import (
	"testing"
	"time"

	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/transaction"
)

func keyPair(seedByte byte) *crypto.KeyPair {
	var seed [crypto.SeedSize]byte
	seed[0] = seedByte
	return crypto.KeyPairFromSeed(seed)
}

// easyDifficulty accepts virtually any hash, so tests don't spend real time
// searching the nonce space.
var easyDifficulty = func() crypto.H256 {
	var d crypto.H256
	for i := range d {
		d[i] = 0xff
	}
	return d
}()

func TestMinerThreeBlocks(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	solved := make(chan *block.Block, 10)

	// Prefill the mempool with three chained-nonce transactions from the
	// funded ICO sender. Each admission is verified against the state the
	// transaction will eventually apply on, so the miner finds exactly one
	// usable candidate per block as it chains.
	sender := keyPair(0)
	state := bc.TipState().Clone()
	for i := 0; i < 3; i++ {
		entry, _ := state.Get(sender.Address)
		tx := transaction.Transaction{Sender: sender.Address, Nonce: entry.Nonce + 1, Receiver: keyPair(1).Address, Value: 1}
		signed := transaction.Sign(tx, sender)
		if _, err := mp.Insert(signed, state); err != nil {
			t.Fatalf("mempool insert %d: %v", i, err)
		}
		if err := state.Apply(tx.Sender, tx.Receiver, tx.Value); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}

	m, handle := New(bc, mp, solved)
	m.Start()
	handle.Start(0)

	var prev *block.Block
	for i := 0; i < 3; i++ {
		select {
		case b := <-solved:
			if prev != nil && prev.Hash() != b.Header.Parent {
				t.Fatalf("block %d: parent does not equal previous block's hash", i)
			}
			prev = b
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for solved block %d", i)
		}
	}
	handle.Exit()
}

func TestMineOneProducesValidProofOfWork(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	solved := make(chan *block.Block, 1)

	sender := keyPair(0)
	entry, _ := bc.TipState().Get(sender.Address)
	tx := transaction.Transaction{Sender: sender.Address, Nonce: entry.Nonce + 1, Receiver: keyPair(1).Address, Value: 1}
	signed := transaction.Sign(tx, sender)
	if _, err := mp.Insert(signed, bc.TipState()); err != nil {
		t.Fatalf("mempool insert: %v", err)
	}

	m, _ := New(bc, mp, solved)
	m.mineOne()

	select {
	case b := <-solved:
		if !b.Hash().LessOrEqual(easyDifficulty) {
			t.Fatalf("expected solved block to satisfy difficulty")
		}
		if b.Header.Parent != bc.GenesisHash() {
			t.Fatalf("expected solved block's parent to be genesis")
		}
		if len(b.Content) == 0 {
			t.Fatalf("expected solved block to have a non-empty body")
		}
	default:
		t.Fatal("expected mineOne to produce a solved block")
	}
}

// TestMineOneSkipsWhenMempoolEmpty ensures the miner never emits an
// empty-bodied block: with nothing admitted to the mempool, mineOne must
// give up the round rather than mine a vacuous block.
func TestMineOneSkipsWhenMempoolEmpty(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	solved := make(chan *block.Block, 1)

	m, _ := New(bc, mp, solved)
	m.mineOne()

	select {
	case b := <-solved:
		t.Fatalf("expected no block to be emitted from an empty mempool, got %v", b)
	default:
	}
}

func TestResyncPicksUpInsertedTip(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	solved := make(chan *block.Block, 1)

	m, _ := New(bc, mp, solved)
	if m.parent != bc.GenesisHash() {
		t.Fatalf("expected miner to start synced to genesis")
	}

	sender := keyPair(0)
	entry, _ := bc.TipState().Get(sender.Address)
	tx := transaction.Transaction{Sender: sender.Address, Nonce: entry.Nonce + 1, Receiver: keyPair(1).Address, Value: 1}
	signed := transaction.Sign(tx, sender)
	external := block.New(bc.GenesisHash(), 0, easyDifficulty, 1, []*transaction.SignedTransaction{signed})

	hash, err := bc.Insert(external)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if m.parent == hash {
		t.Fatalf("expected miner to still be synced to the old tip before resync")
	}
	m.resync()
	if m.parent != hash {
		t.Fatalf("expected resync to pick up the newly inserted tip")
	}
}
