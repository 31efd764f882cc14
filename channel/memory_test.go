// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"errors"
	"net"
	"testing"
)

func TestMemoryFactoryCreate(t *testing.T) {
	factory := NewMemoryFactory()
	for _, name := range []string{"HMDPipe", "TrackPipe0", "TrackPipe1"} {
		if _, err := factory.Create(name); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}
	if _, err := factory.Create("HMDPipe"); err == nil {
		t.Fatal("duplicate Create succeeded")
	}

	created := factory.Created()
	if len(created) != 3 || created[0] != "HMDPipe" || created[2] != "TrackPipe1" {
		t.Fatalf("Created() = %v", created)
	}
}

func TestMemoryFactoryFailCreate(t *testing.T) {
	factory := NewMemoryFactory()
	refused := errors.New("access denied")
	factory.FailCreate("TrackPipe1", refused)

	if _, err := factory.Create("TrackPipe1"); !errors.Is(err, refused) {
		t.Fatalf("Create error = %v, want %v", err, refused)
	}
	if factory.Pipe("TrackPipe1") != nil {
		t.Fatal("failed Create must not register a pipe")
	}
}

func TestMemoryDialRules(t *testing.T) {
	factory := NewMemoryFactory()
	if _, err := factory.Dial("missing"); err == nil {
		t.Fatal("Dial to a missing pipe succeeded")
	}

	factory.Create("HMDPipe")
	if _, err := factory.Dial("HMDPipe"); err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if _, err := factory.Dial("HMDPipe"); err == nil {
		t.Fatal("second peer accepted on a single-instance pipe")
	}

	factory.Create("TrackPipe0")
	factory.Pipe("TrackPipe0").Disconnect()
	if _, err := factory.Dial("TrackPipe0"); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("Dial after Disconnect = %v, want net.ErrClosed", err)
	}
}

func TestMemoryPipeRecordsWrites(t *testing.T) {
	factory := NewMemoryFactory()
	pipe, _ := factory.Create("TrackPipe0")
	peer, _ := factory.Dial("TrackPipe0")
	if connected, err := pipe.TryConnect(); !connected || err != nil {
		t.Fatalf("TryConnect = %v, %v", connected, err)
	}

	pipe.Write([]byte("2 0\x00"))
	pipe.Write([]byte("1 2 3 1 0 0 0\n\x00"))

	writes := peer.Writes()
	if len(writes) != 2 || string(writes[0]) != "2 0\x00" {
		t.Fatalf("Writes() = %q", writes)
	}
	if got := string(peer.Received()); got != "2 0\x001 2 3 1 0 0 0\n\x00" {
		t.Fatalf("Received() = %q", got)
	}

	if err := pipe.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if !factory.Pipe("TrackPipe0").Disconnected() {
		t.Fatal("Disconnected() = false after Disconnect")
	}
	if _, err := pipe.Write([]byte("late")); err == nil {
		t.Fatal("Write after Disconnect succeeded")
	}
}
