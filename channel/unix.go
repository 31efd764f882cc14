// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultConnectTimeout bounds each non-blocking accept attempt.
	DefaultConnectTimeout = time.Millisecond

	// DefaultIOTimeout bounds each read and write on a connected pipe.
	DefaultIOTimeout = 50 * time.Millisecond

	// DefaultSocketBuffer is the kernel buffer size requested for both
	// directions of a connected pipe.
	DefaultSocketBuffer = 16 * 1024
)

// UnixFactory serves channels as Unix domain stream sockets in
// Directory. A channel named HMDPipe listens on Directory/HMDPipe.sock.
type UnixFactory struct {
	// Directory holds the socket files. It is created if missing.
	Directory string

	// ConnectTimeout bounds each TryConnect. Zero selects
	// DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// IOTimeout bounds each Read and Write. Zero selects
	// DefaultIOTimeout.
	IOTimeout time.Duration

	// SocketBuffer is the requested kernel buffer size. Zero selects
	// DefaultSocketBuffer.
	SocketBuffer int
}

// SocketPath returns the socket file used for the channel name.
func (f *UnixFactory) SocketPath(name string) string {
	return filepath.Join(f.Directory, name+".sock")
}

// Create listens on the socket for name, replacing a stale socket file
// left by a previous run.
func (f *UnixFactory) Create(name string) (Pipe, error) {
	if f.Directory == "" {
		return nil, fmt.Errorf("channel: UnixFactory.Directory is required")
	}
	if err := os.MkdirAll(f.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("channel: creating socket directory: %w", err)
	}
	path := f.SocketPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("channel: removing stale socket %s: %w", path, err)
	}

	connectTimeout := f.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	ioTimeout := f.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}
	socketBuffer := f.SocketBuffer
	if socketBuffer <= 0 {
		socketBuffer = DefaultSocketBuffer
	}

	pipe, err := listenUnix(path, connectTimeout, ioTimeout, socketBuffer)
	if err != nil {
		return nil, fmt.Errorf("channel: can't open %s: %w", name, err)
	}
	return pipe, nil
}
