// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel abstracts the OS duplex byte-stream channels the
// bridge serves.
//
// A [Pipe] is the server side of one named channel. It is created by a
// [Factory], waits for exactly one peer, and then carries bytes in both
// directions. Every operation is non-blocking or bounded by a short
// deadline so that a single polling goroutine can drive many pipes:
//
//   - TryConnect accepts a waiting peer or reports that none is there.
//   - Available reports how many bytes can be read without waiting, and
//     reports a peer hang-up as an error wrapping [ErrPeerClosed].
//   - Read and Write move bytes, bounded by an I/O deadline.
//   - Disconnect releases the connection and the name. It is safe to
//     call more than once.
//
// [Endpoint] wraps a Pipe with its name and lifecycle [State]
// (Created, then Open once a peer connects). There is no way back from
// Open: an I/O error on an open endpoint is the owner's problem.
//
// [UnixFactory] serves channels as Unix domain sockets named
// <directory>/<name>.sock. [MemoryFactory] is an in-process
// implementation with scripted failures, used by tests.
package channel
