// Command accountnode wires the core packages together into a single
// runnable process: it exists only to exercise the core end-to-end (mine,
// gossip, replay state) the way cmd/kaspaminer exercises kaspad's mining
// core, not as a production bootstrapper. Real peer transport, the admin
// HTTP API, and persistence remain out of scope and unimplemented here.
package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daglabs/accountchain/block"
	"github.com/daglabs/accountchain/blockchain"
	"github.com/daglabs/accountchain/config"
	"github.com/daglabs/accountchain/crypto"
	"github.com/daglabs/accountchain/logger"
	"github.com/daglabs/accountchain/mempool"
	"github.com/daglabs/accountchain/mining"
	"github.com/daglabs/accountchain/protocol"
	"github.com/daglabs/accountchain/txgen"
	"github.com/daglabs/accountchain/util/panics"
)

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	logger.InitLogRotators(cfg.LogFile, cfg.ErrLogFile)
	logger.SetLogLevels(cfg.LogLevel)

	difficulty, err := crypto.H256FromHex(cfg.DifficultyHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --difficulty: %s\n", err)
		os.Exit(1)
	}

	// By default the node's identity is derived from its listen address;
	// --ico-key instead assumes one of the three well-known ICO accounts.
	// Only account 0 is funded at genesis; accounts 1 and 2 start at zero
	// balance and can spend only what they receive.
	var nodeKeyPair *crypto.KeyPair
	if cfg.ICOKey >= 0 {
		nodeKeyPair = blockchain.ICOKeyPair(cfg.ICOKey)
		log.Infof("node address %s is ICO account %d", nodeKeyPair.Address, cfg.ICOKey)
	} else {
		nodeKeyPair = crypto.KeyPairFromSeed(seedFromListenAddress(cfg.ListenSeed))
		log.Infof("node address %s derived from listen seed %q", nodeKeyPair.Address, cfg.ListenSeed)
	}
	for i, addr := range blockchain.ICOAddresses() {
		log.Infof("ICO address %d: %s", i, addr)
	}

	bc := blockchain.New(difficulty)
	mp := mempool.New()
	server := protocol.NewTestServerHandle()

	solved := make(chan *block.Block, 64)
	miner, minerHandle := mining.New(bc, mp, solved)
	installer := mining.NewInstaller(bc, mp, solved, minerHandle, func(hash crypto.H256) {
		log.Infof("installed mined block %s at height %d", hash, bc.TipHeight())
		server.Broadcast(&protocol.NewBlockHashes{Hashes: []crypto.H256{hash}})
	})

	generator, generatorHandle := txgen.New(bc, mp, server, nodeKeyPair)

	pool := protocol.NewPool(bc, mp, server, minerHandle.Update, cfg.InboundBufferSize, cfg.NetworkWorkers)

	miner.Start()
	installer.Start()
	generator.Start()
	pool.Start()

	if cfg.StartMiner {
		minerHandle.Start(cfg.MinerIntervalMicros)
	}
	if cfg.StartGenerator {
		generatorHandle.Start(cfg.GeneratorIntervalMicros)
	}

	log.Infof("accountnode running; genesis %s", bc.GenesisHash())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	minerHandle.Exit()
	generatorHandle.Exit()
	log.Infof("accountnode shutting down")
}

// seedFromListenAddress derives a node's 32-byte keypair seed from its
// P2P listen address, per the core's seeding contract: every node picks
// its own identity this way, while the three ICO addresses use the fixed
// well-known seeds in blockchain.ICOAddresses regardless of any node's
// listen address.
func seedFromListenAddress(listenAddress string) [crypto.SeedSize]byte {
	return sha256.Sum256([]byte(listenAddress))
}
