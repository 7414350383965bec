package txgen

import (
	"testing"
	"time"

	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/protocol"
)

var easyDifficulty = func() crypto.H256 {
	var d crypto.H256
	for i := range d {
		d[i] = 0xff
	}
	return d
}()

func keyPair(seedByte byte) *crypto.KeyPair {
	var seed [crypto.SeedSize]byte
	seed[0] = seedByte
	return crypto.KeyPairFromSeed(seed)
}

func TestGenerateOneAdmitsAndBroadcasts(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	server := protocol.NewTestServerHandle()

	// keyPair(0) (all-zero seed) is ICO account 0, the one funded at genesis.
	signer := keyPair(0)
	g, _ := New(bc, mp, server, signer)
	g.generateOne()

	if mp.Len() != 1 {
		t.Fatalf("expected exactly one transaction admitted, got %d", mp.Len())
	}
	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one broadcast, got %d", len(msgs))
	}
	announce, ok := msgs[0].(*protocol.NewTransactionHashes)
	if !ok || len(announce.Hashes) != 1 {
		t.Fatalf("expected a NewTransactionHashes broadcast of the generated transaction")
	}
}

func TestGenerateOneSkipsUnfundedSigner(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	server := protocol.NewTestServerHandle()

	// a freshly derived key pair has no entry in genesis state at all.
	signer := keyPair(99)
	g, _ := New(bc, mp, server, signer)
	g.generateOne()

	if mp.Len() != 0 {
		t.Fatalf("expected no transaction admitted for an unfunded signer")
	}
	if len(server.Messages()) != 0 {
		t.Fatalf("expected no broadcast for an unfunded signer")
	}
}

func TestGeneratorRunsContinuously(t *testing.T) {
	bc := blockchain.New(easyDifficulty)
	mp := mempool.New()
	server := protocol.NewTestServerHandle()

	signer := keyPair(0)
	g, handle := New(bc, mp, server, signer)
	g.Start()
	handle.Start(0)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && mp.Len() == 0 {
		time.Sleep(time.Millisecond)
	}
	if mp.Len() == 0 {
		t.Fatal("expected generator to admit at least one transaction")
	}
	handle.Exit()
}
