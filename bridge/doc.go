// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge connects a pose-tracking engine to an external VR
// runtime over local duplex channels.
//
// A [Bridge] owns one primary channel, on which the runtime streams the
// head-mounted display pose, and one secondary channel per tracked body
// point, on which the bridge streams that point's pose back. All channel
// I/O happens on a single worker goroutine started by [Bridge.Start].
// The engine exchanges data with the worker through two lock-free
// handoffs:
//
//   - [Bridge.DataRead] consumes the most recent decoded head pose (if
//     any arrived since the last call) and applies it to the head
//     tracker.
//   - [Bridge.DataWrite] copies every body tracker's pose and send gate
//     into the worker's mirror cells.
//
// The worker polls: each iteration tries to open channels that have no
// peer yet, and once every channel is open it drains the primary channel
// and, only if a head pose was decoded in that same iteration, writes
// each secondary's mirror pose. Iterations that decode nothing are
// followed by a short idle wait on the injected clock.
//
// Channel and protocol problems (a peer not yet present, a malformed
// line, an overlong line) are logged and recovered from. An I/O error on
// an open channel ends the worker; [Bridge.Done] closes and [Bridge.Err]
// reports the cause. There is no automatic restart.
package bridge
