// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the daemon's status socket: a CBOR
// request-response protocol on a Unix socket.
//
// Each connection carries exactly one exchange. The client writes one
// CBOR map with an "action" field plus any action-specific fields; the
// server routes on the action, runs the registered [ActionFunc], and
// writes one [Response] envelope before closing the connection. CBOR is
// self-delimiting, so no framing is needed.
//
// [SocketServer] is the server side and [Call] the client side.
package service
