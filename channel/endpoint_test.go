// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newMemoryEndpoint(t *testing.T, factory *MemoryFactory, name string) (*Endpoint, *MemoryPipe) {
	t.Helper()
	pipe, err := factory.Create(name)
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	return NewEndpoint(name, pipe), factory.Pipe(name)
}

func TestEndpointStartsCreated(t *testing.T) {
	endpoint, pipe := newMemoryEndpoint(t, NewMemoryFactory(), "HMDPipe")
	if endpoint.State() != StateCreated {
		t.Fatalf("State() = %v, want created", endpoint.State())
	}
	if endpoint.IsOpen() {
		t.Fatal("new endpoint must not be open")
	}
	if endpoint.Name() != "HMDPipe" {
		t.Fatalf("Name() = %q", endpoint.Name())
	}
	if endpoint.Pipe() != Pipe(pipe) {
		t.Fatal("Pipe() does not return the wrapped pipe")
	}
}

func TestEndpointTryOpenWaitsForPeer(t *testing.T) {
	factory := NewMemoryFactory()
	endpoint, pipe := newMemoryEndpoint(t, factory, "TrackPipe0")
	logger := testLogger()

	if endpoint.TryOpen(logger) {
		t.Fatal("TryOpen succeeded without a peer")
	}
	if endpoint.State() != StateCreated {
		t.Fatalf("State() = %v after failed attempt", endpoint.State())
	}

	if _, err := factory.Dial("TrackPipe0"); err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if !endpoint.TryOpen(logger) {
		t.Fatal("TryOpen failed with a waiting peer")
	}
	if endpoint.State() != StateOpen {
		t.Fatalf("State() = %v, want open", endpoint.State())
	}

	// The transition is reported once.
	if endpoint.TryOpen(logger) {
		t.Fatal("TryOpen reported a second transition")
	}
	if attempts := pipe.ConnectAttempts(); attempts != 2 {
		t.Fatalf("ConnectAttempts = %d, want 2", attempts)
	}
}

func TestEndpointConnectErrorStaysCreated(t *testing.T) {
	factory := NewMemoryFactory()
	endpoint, pipe := newMemoryEndpoint(t, factory, "HMDPipe")
	if _, err := factory.Dial("HMDPipe"); err != nil {
		t.Fatalf("Dial: %v", err)
	}

	pipe.FailConnect(errors.New("ERROR_PIPE_BUSY"))
	if endpoint.TryOpen(testLogger()) {
		t.Fatal("TryOpen succeeded despite connect error")
	}
	if endpoint.State() != StateCreated {
		t.Fatalf("State() = %v after connect error", endpoint.State())
	}

	// The error was one-shot; the retry succeeds.
	if !endpoint.TryOpen(testLogger()) {
		t.Fatal("retry after connect error failed")
	}
}

func TestEndpointIOWrapsName(t *testing.T) {
	factory := NewMemoryFactory()
	endpoint, pipe := newMemoryEndpoint(t, factory, "HMDPipe")
	peer, err := factory.Dial("HMDPipe")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	endpoint.TryOpen(testLogger())

	if _, err := peer.Write([]byte("abc")); err != nil {
		t.Fatalf("peer Write: %v", err)
	}
	available, err := endpoint.Available()
	if err != nil || available != 3 {
		t.Fatalf("Available() = %d, %v; want 3, nil", available, err)
	}

	pipe.FailRead(io.ErrUnexpectedEOF)
	_, err = endpoint.Read(make([]byte, 8))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Read error = %v, want wrapped ErrUnexpectedEOF", err)
	}
	if got := err.Error(); got != "reading HMDPipe: unexpected EOF" {
		t.Fatalf("Read error text = %q", got)
	}

	if err := endpoint.WriteAll([]byte("1 2 3 1 0 0 0\n\x00")); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if got := string(peer.Received()); got != "1 2 3 1 0 0 0\n\x00" {
		t.Fatalf("peer received %q", got)
	}
}

func TestEndpointPeerHangup(t *testing.T) {
	factory := NewMemoryFactory()
	endpoint, _ := newMemoryEndpoint(t, factory, "HMDPipe")
	peer, _ := factory.Dial("HMDPipe")
	endpoint.TryOpen(testLogger())

	peer.Write([]byte("x"))
	peer.Close()

	// Buffered bytes are still delivered before the hang-up surfaces.
	if available, err := endpoint.Available(); err != nil || available != 1 {
		t.Fatalf("Available() = %d, %v; want 1, nil", available, err)
	}
	endpoint.Read(make([]byte, 1))

	_, err := endpoint.Available()
	if !errors.Is(err, ErrPeerClosed) || !errors.Is(err, io.EOF) {
		t.Fatalf("Available error = %v, want ErrPeerClosed and EOF", err)
	}
}

type shortPipe struct{ MemoryPipe }

func (p *shortPipe) Write(b []byte) (int, error) { return len(b) - 1, nil }

func TestEndpointShortWrite(t *testing.T) {
	endpoint := NewEndpoint("TrackPipe0", &shortPipe{})
	err := endpoint.WriteAll([]byte("3 0\x00"))
	if !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("WriteAll error = %v, want ErrShortWrite", err)
	}
}

func TestStateString(t *testing.T) {
	if StateCreated.String() != "created" || StateOpen.String() != "open" || State(7).String() != "unknown" {
		t.Fatal("unexpected State strings")
	}
}
