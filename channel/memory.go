// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// MemoryFactory creates in-process pipes. Tests dial the created pipes
// with Dial and script failures per channel name.
type MemoryFactory struct {
	mu           sync.Mutex
	pipes        map[string]*MemoryPipe
	created      []string
	createErrors map[string]error
}

// NewMemoryFactory returns an empty factory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{
		pipes:        make(map[string]*MemoryPipe),
		createErrors: make(map[string]error),
	}
}

// FailCreate makes Create(name) return err.
func (f *MemoryFactory) FailCreate(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErrors[name] = err
}

// Create implements Factory.
func (f *MemoryFactory) Create(name string) (Pipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErrors[name]; err != nil {
		return nil, err
	}
	if _, exists := f.pipes[name]; exists {
		return nil, fmt.Errorf("channel: %s already exists", name)
	}
	pipe := &MemoryPipe{name: name}
	f.pipes[name] = pipe
	f.created = append(f.created, name)
	return pipe, nil
}

// Created returns the names passed to successful Create calls, in order.
func (f *MemoryFactory) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

// Pipe returns the pipe created for name, or nil.
func (f *MemoryFactory) Pipe(name string) *MemoryPipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pipes[name]
}

// Dial connects a peer to the named pipe. The pipe observes the peer on
// its next TryConnect.
func (f *MemoryFactory) Dial(name string) (*MemoryPeer, error) {
	pipe := f.Pipe(name)
	if pipe == nil {
		return nil, fmt.Errorf("channel: no pipe named %s", name)
	}
	pipe.mu.Lock()
	defer pipe.mu.Unlock()
	if pipe.disconnected {
		return nil, net.ErrClosed
	}
	if pipe.dialed {
		return nil, fmt.Errorf("channel: %s already has a peer", name)
	}
	pipe.dialed = true
	return &MemoryPeer{pipe: pipe}, nil
}

// MemoryPipe is the bridge side of an in-process channel.
type MemoryPipe struct {
	name string

	mu              sync.Mutex
	dialed          bool
	connected       bool
	peerClosed      bool
	disconnected    bool
	inbound         bytes.Buffer
	outbound        bytes.Buffer
	writes          [][]byte
	connectAttempts int
	reads           int

	connectErr   error
	availableErr error
	readErr      error
	writeErr     error
}

// FailConnect makes the next TryConnect return err.
func (p *MemoryPipe) FailConnect(err error) { p.setError(&p.connectErr, err) }

// FailAvailable makes the next Available return err.
func (p *MemoryPipe) FailAvailable(err error) { p.setError(&p.availableErr, err) }

// FailRead makes the next Read return err.
func (p *MemoryPipe) FailRead(err error) { p.setError(&p.readErr, err) }

// FailWrite makes the next Write return err.
func (p *MemoryPipe) FailWrite(err error) { p.setError(&p.writeErr, err) }

func (p *MemoryPipe) setError(target *error, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*target = err
}

// takeError returns and clears a one-shot scripted error. Must be called
// with p.mu held.
func takeError(target *error) error {
	err := *target
	*target = nil
	return err
}

func (p *MemoryPipe) TryConnect() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectAttempts++
	if err := takeError(&p.connectErr); err != nil {
		return false, err
	}
	if p.disconnected {
		return false, net.ErrClosed
	}
	if p.dialed {
		p.connected = true
	}
	return p.connected, nil
}

func (p *MemoryPipe) Available() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := takeError(&p.availableErr); err != nil {
		return 0, err
	}
	if !p.connected {
		return 0, errors.New("not connected")
	}
	if p.inbound.Len() == 0 && p.peerClosed {
		return 0, fmt.Errorf("%w: %w", ErrPeerClosed, io.EOF)
	}
	return p.inbound.Len(), nil
}

func (p *MemoryPipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	if err := takeError(&p.readErr); err != nil {
		return 0, err
	}
	if !p.connected {
		return 0, errors.New("not connected")
	}
	if p.inbound.Len() == 0 {
		return 0, nil
	}
	return p.inbound.Read(b)
}

func (p *MemoryPipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := takeError(&p.writeErr); err != nil {
		return 0, err
	}
	if !p.connected {
		return 0, errors.New("not connected")
	}
	if p.peerClosed {
		return 0, io.ErrClosedPipe
	}
	p.writes = append(p.writes, append([]byte(nil), b...))
	return p.outbound.Write(b)
}

func (p *MemoryPipe) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = true
	p.connected = false
	return nil
}

// ConnectAttempts returns how many times TryConnect was called.
func (p *MemoryPipe) ConnectAttempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectAttempts
}

// Reads returns how many times Read was called.
func (p *MemoryPipe) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// Disconnected reports whether Disconnect was called.
func (p *MemoryPipe) Disconnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disconnected
}

// MemoryPeer is the remote side of a MemoryPipe: the VR runtime in
// tests.
type MemoryPeer struct {
	pipe *MemoryPipe
}

// Write queues bytes for the bridge to read.
func (p *MemoryPeer) Write(b []byte) (int, error) {
	p.pipe.mu.Lock()
	defer p.pipe.mu.Unlock()
	if p.pipe.peerClosed || p.pipe.disconnected {
		return 0, io.ErrClosedPipe
	}
	return p.pipe.inbound.Write(b)
}

// Received returns every byte the bridge has written so far.
func (p *MemoryPeer) Received() []byte {
	p.pipe.mu.Lock()
	defer p.pipe.mu.Unlock()
	return append([]byte(nil), p.pipe.outbound.Bytes()...)
}

// Writes returns the payload of each bridge Write call, in order.
func (p *MemoryPeer) Writes() [][]byte {
	p.pipe.mu.Lock()
	defer p.pipe.mu.Unlock()
	writes := make([][]byte, len(p.pipe.writes))
	copy(writes, p.pipe.writes)
	return writes
}

// Close hangs up. The bridge sees ErrPeerClosed once it has drained the
// bytes already queued.
func (p *MemoryPeer) Close() error {
	p.pipe.mu.Lock()
	defer p.pipe.mu.Unlock()
	p.pipe.peerClosed = true
	return nil
}
