// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// posebridge-hmdsim plays the VR runtime's side of a posebridge
// daemon, for manual end-to-end runs without a headset.
//
// It connects to the head channel and every body channel in the socket
// directory, checks each body channel's "<N> 0" handshake against the
// expected tracker count, then streams a synthetic head pose (a slow
// sway with a yaw oscillation) at --rate Hz. Body frames received back
// are decoded and counted; a summary is logged every second and at
// exit.
package main
