// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logs implements a small subsystem-tagged leveled logger. Each
// subsystem gets its own *Logger sharing a common Backend; the backend fans
// every record out to one or more io.Writer-backed BackendWriters.
package logs

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level is a logging priority.
type Level uint32

// Logging levels, lowest to highest priority.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelStrings = map[Level]string{
	LevelTrace:    "TRC",
	LevelDebug:    "DBG",
	LevelInfo:     "INF",
	LevelWarn:     "WRN",
	LevelError:    "ERR",
	LevelCritical: "CRT",
	LevelOff:      "OFF",
}

// String returns the string representation of the level.
func (l Level) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return "UNK"
}

// LevelFromString parses a level name, defaulting to LevelInfo when the
// string is not a recognized level.
func LevelFromString(s string) (l Level, ok bool) {
	switch s {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "critical":
		return LevelCritical, true
	}
	return LevelInfo, false
}

// BackendWriter pairs an io.Writer with the minimum level it accepts.
type BackendWriter struct {
	w        io.Writer
	minLevel Level
}

// NewAllLevelsBackendWriter returns a BackendWriter that accepts every level.
func NewAllLevelsBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelTrace}
}

// NewErrorBackendWriter returns a BackendWriter that only accepts Error and
// above.
func NewErrorBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelError}
}

// Backend dispatches formatted log records to its writers.
type Backend struct {
	writers []*BackendWriter
	mtx     sync.Mutex
}

// NewBackend creates a logging backend from a set of writers.
func NewBackend(writers []*BackendWriter) *Backend {
	return &Backend{writers: writers}
}

// Logger creates a subsystem logger sharing this backend.
func (b *Backend) Logger(subsystemTag string) *Logger {
	l := &Logger{tag: subsystemTag, backend: b}
	l.level.Store(uint32(LevelInfo))
	return l
}

func (b *Backend) write(level Level, tag, s string) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	line := fmt.Sprintf("%s [%s] %s: %s\n", time.Now().Format("2006-01-02 15:04:05.000"), level, tag, s)
	for _, bw := range b.writers {
		if level < bw.minLevel {
			continue
		}
		_, _ = io.WriteString(bw.w, line)
	}
}

// Close flushes and releases resources held by the backend's writers that
// implement io.Closer.
func (b *Backend) Close() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, bw := range b.writers {
		if c, ok := bw.w.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// Logger is a subsystem-tagged leveled logger.
type Logger struct {
	tag     string
	backend *Backend
	level   atomic.Uint32
}

// NewLogger returns a standalone logger writing directly to stdout, useful
// for tests that don't want to wire a Backend.
func NewLogger(tag string) *Logger {
	return NewBackend([]*BackendWriter{NewAllLevelsBackendWriter(os.Stdout)}).Logger(tag)
}

// Level returns the logger's current minimum level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// SetLevel sets the logger's minimum level.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(uint32(level))
}

// Backend returns the logger's backend.
func (l *Logger) Backend() *Backend {
	return l.backend
}

func (l *Logger) write(level Level, s string) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.tag, s)
}

// Tracef formats and logs at the Trace level.
func (l *Logger) Tracef(format string, args ...interface{}) { l.write(LevelTrace, fmt.Sprintf(format, args...)) }

// Debugf formats and logs at the Debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.write(LevelDebug, fmt.Sprintf(format, args...)) }

// Infof formats and logs at the Info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.write(LevelInfo, fmt.Sprintf(format, args...)) }

// Warnf formats and logs at the Warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.write(LevelWarn, fmt.Sprintf(format, args...)) }

// Errorf formats and logs at the Error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.write(LevelError, fmt.Sprintf(format, args...)) }

// Criticalf formats and logs at the Critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(LevelCritical, fmt.Sprintf(format, args...))
}
