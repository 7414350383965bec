// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logger registers one subsystem logger per core component and
// wires them to a rotating file backend.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/daglabs/accountchain/logs"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if initiated {
		os.Stdout.Write(p)
		LogRotator.Write(p)
	}
	return len(p), nil
}

// errLogWriter implements an io.Writer that outputs to both standard output
// and the write-end pipe of an initialized error log rotator.
type errLogWriter struct{}

func (errLogWriter) Write(p []byte) (n int, err error) {
	if initiated {
		os.Stdout.Write(p)
		ErrLogRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it write through it. Loggers can be called
// before InitLogRotators, but records written before then are discarded
// (neither printed nor persisted).
var (
	backendLog = logs.NewBackend([]*logs.BackendWriter{
		logs.NewAllLevelsBackendWriter(logWriter{}),
		logs.NewErrorBackendWriter(errLogWriter{}),
	})

	// LogRotator is the primary log output. It should be closed on
	// application shutdown.
	LogRotator *rotator.Rotator
	// ErrLogRotator receives only Error-and-above records.
	ErrLogRotator *rotator.Rotator

	chanLog = backendLog.Logger(SubsystemTags.CHAN)
	minrLog = backendLog.Logger(SubsystemTags.MINR)
	nsynLog = backendLog.Logger(SubsystemTags.NSYN)
	txgnLog = backendLog.Logger(SubsystemTags.TXGN)
	mmplLog = backendLog.Logger(SubsystemTags.MMPL)
	crptLog = backendLog.Logger(SubsystemTags.CRPT)
	nodeLog = backendLog.Logger(SubsystemTags.NODE)

	initiated = false
)

// SubsystemTags is an enum of all subsystem tags.
var SubsystemTags = struct {
	CHAN,
	MINR,
	NSYN,
	TXGN,
	MMPL,
	CRPT,
	NODE string
}{
	CHAN: "CHAN",
	MINR: "MINR",
	NSYN: "NSYN",
	TXGN: "TXGN",
	MMPL: "MMPL",
	CRPT: "CRPT",
	NODE: "NODE",
}

var subsystemLoggers = map[string]*logs.Logger{
	SubsystemTags.CHAN: chanLog,
	SubsystemTags.MINR: minrLog,
	SubsystemTags.NSYN: nsynLog,
	SubsystemTags.TXGN: txgnLog,
	SubsystemTags.MMPL: mmplLog,
	SubsystemTags.CRPT: crptLog,
	SubsystemTags.NODE: nodeLog,
}

// InitLogRotators initializes the rotating log outputs. It must be called
// before the package-global log rotator variables are used.
func InitLogRotators(logFile, errLogFile string) {
	initiated = true
	LogRotator = initLogRotator(logFile)
	ErrLogRotator = initLogRotator(errLogFile)
}

func initLogRotator(logFile string) *rotator.Rotator {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	return r
}

// SetLogLevel sets the logging level for the given subsystem. Unknown
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := logs.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for every subsystem logger.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of known subsystem tags.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// Get returns the logger registered for tag.
func Get(tag string) (logger *logs.Logger, ok bool) {
	logger, ok = subsystemLoggers[tag]
	return
}

// ParseAndSetDebugLevels parses a debug-level spec of either a bare level
// ("info") or a comma-separated list of subsystem=level pairs
// ("CHAN=debug,MINR=trace") and applies it.
func ParseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("the specified debug level [%s] is invalid", debugLevel)
		}
		SetLogLevels(debugLevel)
		return nil
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%s]", logLevelPair)
		}
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]
		if _, exists := Get(subsysID); !exists {
			return fmt.Errorf("the specified subsystem [%s] is invalid -- supported subsystems %s",
				subsysID, strings.Join(SupportedSubsystems(), ", "))
		}
		if !validLogLevel(logLevel) {
			return fmt.Errorf("the specified debug level [%s] is invalid", logLevel)
		}
		SetLogLevel(subsysID, logLevel)
	}
	return nil
}

func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}
