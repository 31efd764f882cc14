// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import "errors"

// ErrPeerClosed is wrapped by Available when the peer has hung up and
// no buffered data remains.
var ErrPeerClosed = errors.New("channel: peer closed")

// Pipe is the server side of one duplex channel. A Pipe is used by a
// single goroutine.
type Pipe interface {
	// TryConnect accepts a waiting peer without blocking. It returns
	// (false, nil) when no peer is waiting. Once it has returned true
	// it keeps returning true.
	TryConnect() (bool, error)

	// Available returns the number of bytes that Read can return
	// without waiting.
	Available() (int, error)

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Disconnect closes the connection, if any, and releases the name.
	Disconnect() error
}

// Factory creates named pipes.
type Factory interface {
	Create(name string) (Pipe, error)
}
