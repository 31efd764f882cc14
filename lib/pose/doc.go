// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pose defines the pose sample carried across the bridge and the
// two lock-free structures used to hand samples between goroutines.
//
// A [Sample] is a plain value: a position ([r3.Vec]) and a rotation
// ([quat.Number], w x y z order on the wire). Samples are always copied
// across goroutine boundaries, never shared by reference.
//
// [Mailbox] is the inbound path: a single slot overwritten by the I/O
// goroutine and drained at most once per post by the engine goroutine.
// Unread samples are overwritten (last writer wins); there is no queue.
//
// [Cell] is the outbound path: the engine stores a tracker's latest pose
// and the I/O goroutine loads it when encoding. Each store swaps a whole
// value, so a reader never observes a half-written sample.
package pose
