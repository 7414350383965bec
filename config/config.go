// Package config parses the command-line flags that wire together a
// standalone node process. The core packages themselves take no CLI
// dependency, so the flag struct lives here on its own.
package config

import (
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultLogFilename    = "accountnode.log"
	defaultErrLogFilename = "accountnode_err.log"

	// DefaultDifficultyHex is the fixed difficulty every node in a demo
	// cluster must agree on; 0x0000ffff... accepts roughly 1 in 65536
	// hashes, easy enough to mine on a laptop CPU within seconds.
	DefaultDifficultyHex = "0000ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

	defaultInboundBufferSize = 10000
	defaultNetworkWorkers    = 4
)

// Config holds every flag needed to bring up one accountnode process: its
// own identity seed, the fixed cluster difficulty, the mining and
// transaction-generation cadence, and the network worker pool sizing.
type Config struct {
	ListenSeed string `long:"seed" description:"Listen address this node derives its keypair seed from" required:"true"`

	DifficultyHex string `long:"difficulty" description:"Hex-encoded 32-byte difficulty target, shared cluster-wide" default:"0000ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"`

	MinerIntervalMicros     uint64 `long:"miner-interval" description:"Microseconds to sleep between miner iterations (0 disables sleeping)"`
	GeneratorIntervalMicros uint64 `long:"generator-interval" description:"Base microsecond interval for the transaction generator (actual sleep is this times 10000)"`

	InboundBufferSize int `long:"inbound-buffer" description:"Capacity of the bounded inbound gossip message channel" default:"10000"`
	NetworkWorkers    int `long:"workers" description:"Number of network worker goroutines draining the inbound channel" default:"4"`

	StartMiner     bool `long:"start-miner" description:"Start the miner immediately instead of leaving it paused"`
	StartGenerator bool `long:"start-generator" description:"Start the transaction generator immediately instead of leaving it paused"`

	ICOKey int `long:"ico-key" description:"Sign generated transactions as this well-known ICO account (0-2) instead of the seed-derived identity" default:"-1"`

	LogLevel   string `long:"loglevel" description:"Log level applied to every subsystem (trace, debug, info, warn, error, critical)" default:"info"`
	LogFile    string `long:"logfile" description:"Path to the primary log file"`
	ErrLogFile string `long:"errlogfile" description:"Path to the error-and-above log file"`
}

// Parse parses args into a Config, applying defaults and the cross-field
// validation the struct tags cannot express.
func Parse(args []string) (*Config, error) {
	cfg := &Config{
		DifficultyHex:     DefaultDifficultyHex,
		InboundBufferSize: defaultInboundBufferSize,
		NetworkWorkers:    defaultNetworkWorkers,
		ICOKey:            -1,
		LogLevel:          "info",
		LogFile:           defaultLogFilename,
		ErrLogFile:        defaultErrLogFilename,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.ListenSeed == "" {
		return nil, errors.New("--seed is required")
	}
	if len(cfg.DifficultyHex) != 64 {
		return nil, errors.Errorf("--difficulty must be 64 hex characters, got %d", len(cfg.DifficultyHex))
	}
	if cfg.NetworkWorkers <= 0 {
		return nil, errors.New("--workers must be positive")
	}
	if cfg.InboundBufferSize <= 0 {
		return nil, errors.New("--inbound-buffer must be positive")
	}
	if cfg.ICOKey < -1 || cfg.ICOKey > 2 {
		return nil, errors.New("--ico-key must be between 0 and 2")
	}
	return cfg, nil
}
