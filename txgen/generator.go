// Package txgen implements the synthetic transaction workload generator
// used to exercise a running node: on each tick it picks one of the
// well-known ICO addresses as a receiver, spends from a fixed signer's
// current tip-state balance, and gossips the result to the network.
package txgen

import (
	"math/rand"
	"time"

	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/protocol"
	"github.com/daglabs/accountchain/statemachine"
	"github.com/daglabs/accountchain/transaction"
)

// Handle drives a running Generator's control loop.
type Handle struct {
	control *statemachine.ControlHandle
}

// Start signals the generator to begin issuing transactions continuously.
// intervalMicros*10000 is the sleep duration between transactions (0 runs
// flat-out).
func (h *Handle) Start(intervalMicros uint64) { h.control.Start(intervalMicros) }

// Update is a no-op hook for parity with the other control-loop handles;
// the generator has no cached blockchain state to resync.
func (h *Handle) Update() { h.control.Update() }

// Exit signals the generator to shut down.
func (h *Handle) Exit() { h.control.Exit() }

// Generator issues synthetic, validly signed transactions from a single
// fixed signer address to a uniformly chosen ICO address, admitting each
// to the mempool and broadcasting it to the network.
type Generator struct {
	bc     *blockchain.Blockchain
	mp     *mempool.Mempool
	server protocol.ServerHandle
	signer *crypto.KeyPair
	rng    *rand.Rand

	control <-chan statemachine.Signal
}

// New constructs a Generator that spends from signer's account.
func New(bc *blockchain.Blockchain, mp *mempool.Mempool, server protocol.ServerHandle, signer *crypto.KeyPair) (*Generator, *Handle) {
	controlHandle, control := statemachine.NewControlHandle()
	g := &Generator{
		bc:      bc,
		mp:      mp,
		server:  server,
		signer:  signer,
		rng:     rand.New(rand.NewSource(rand.Int63())),
		control: control,
	}
	return g, &Handle{control: controlHandle}
}

// Start spawns the generator's control loop on its own panic-handled
// goroutine and returns immediately.
func (g *Generator) Start() {
	spawn(g.run)
}

func (g *Generator) run() {
	log.Infof("Transaction generator initialized into paused mode")
	statemachine.Loop(g.control, g.generateOne, g.sleep, nil)
}

// generateOne spends from the signer's current tip-state balance to a
// uniformly chosen ICO address, skipping this round if the balance is too
// low to spend from.
func (g *Generator) generateOne() {
	tipState := g.bc.TipState()
	entry, ok := tipState.Get(g.signer.Address)
	if !ok || entry.Balance <= 1 {
		return
	}

	addrs := blockchain.ICOAddresses()
	receiver := addrs[g.rng.Intn(len(addrs))]
	value := uint64(1 + g.rng.Intn(100))

	tx := transaction.Transaction{
		Sender:   g.signer.Address,
		Nonce:    entry.Nonce + 1,
		Receiver: receiver,
		Value:    value,
	}
	signed := transaction.Sign(tx, g.signer)

	hash, err := g.mp.Insert(signed, tipState)
	if err != nil {
		log.Warnf("generated transaction did not verify: %s", err)
		return
	}
	g.server.Broadcast(&protocol.NewTransactionHashes{Hashes: []crypto.H256{hash}})
}

func (g *Generator) sleep(intervalMicros uint64) {
	time.Sleep(time.Duration(intervalMicros) * 10000 * time.Microsecond)
}
