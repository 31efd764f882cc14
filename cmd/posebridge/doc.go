// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// posebridge bridges a pose-tracking engine to a VR runtime over local
// sockets.
//
// "posebridge run" creates the head channel (HMDPipe) and one body
// channel per configured tracker (TrackPipe0, TrackPipe1, ...) in the
// socket directory, then runs the bridge worker and a built-in engine
// tick until SIGINT or SIGTERM. The runtime connects to every channel,
// streams head poses on the head channel, and receives a "<N> 0"
// handshake followed by body poses on each body channel.
//
// "posebridge status" queries a running daemon over its status socket
// and prints the bridge snapshot as JSON.
//
// Configuration comes from --config or POSEBRIDGE_CONFIG; with neither
// set the built-in defaults are used.
package main
