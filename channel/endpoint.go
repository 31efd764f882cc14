// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Endpoint owns one Pipe and tracks its lifecycle. I/O methods must only
// be called from the owning goroutine; Name and State may be read from
// any goroutine.
type Endpoint struct {
	pipe  Pipe
	name  string
	state atomic.Int32
}

// NewEndpoint wraps a freshly created pipe. The endpoint starts in
// StateCreated.
func NewEndpoint(name string, pipe Pipe) *Endpoint {
	return &Endpoint{pipe: pipe, name: name}
}

// Name returns the channel name.
func (e *Endpoint) Name() string { return e.name }

// State returns the current lifecycle state.
func (e *Endpoint) State() State { return State(e.state.Load()) }

// Pipe returns the underlying pipe.
func (e *Endpoint) Pipe() Pipe { return e.pipe }

// IsOpen reports whether a peer is connected.
func (e *Endpoint) IsOpen() bool { return e.State() == StateOpen }

// TryOpen attempts the Created to Open transition. It returns true only
// on the call that performs the transition, so the caller can run its
// one-time initialization. A failed attempt is logged and leaves the
// endpoint Created; the caller retries on its next pass.
func (e *Endpoint) TryOpen(logger *slog.Logger) bool {
	if e.IsOpen() {
		return false
	}
	connected, err := e.pipe.TryConnect()
	if err != nil {
		logger.Warn("error connecting to channel", "channel", e.name, "error", err)
		return false
	}
	if !connected {
		logger.Debug("channel waiting for peer", "channel", e.name)
		return false
	}
	e.state.Store(int32(StateOpen))
	logger.Info("channel open", "channel", e.name)
	return true
}

// Available returns the number of bytes readable without waiting.
func (e *Endpoint) Available() (int, error) {
	count, err := e.pipe.Available()
	if err != nil {
		return 0, fmt.Errorf("peeking %s: %w", e.name, err)
	}
	return count, nil
}

// Read reads from the channel into p.
func (e *Endpoint) Read(p []byte) (int, error) {
	n, err := e.pipe.Read(p)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", e.name, err)
	}
	return n, nil
}

// WriteAll writes all of p. A short write is an error.
func (e *Endpoint) WriteAll(p []byte) error {
	n, err := e.pipe.Write(p)
	if err != nil {
		return fmt.Errorf("writing %s: %w", e.name, err)
	}
	if n != len(p) {
		return fmt.Errorf("writing %s: %w (%d of %d bytes)", e.name, io.ErrShortWrite, n, len(p))
	}
	return nil
}

// Disconnect releases the underlying pipe.
func (e *Endpoint) Disconnect() error {
	if err := e.pipe.Disconnect(); err != nil {
		return fmt.Errorf("disconnecting %s: %w", e.name, err)
	}
	return nil
}
