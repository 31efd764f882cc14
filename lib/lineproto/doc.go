// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lineproto implements the text line protocol spoken between the
// bridge and the VR runtime.
//
// A pose line is seven decimal fields separated by single spaces and
// terminated by a newline:
//
//	x y z qw qx qy qz\n
//
// When the bridge writes a line it appends one NUL byte after the
// newline; the runtime uses NUL as its frame separator. The one-time
// handshake on each tracker channel is "<N> 0" followed by NUL, where N
// is the number of tracked body points served by the bridge.
//
// [DecodePose] parses one line, [AppendPose] and [AppendFrame] encode one,
// and [Accumulator] reassembles lines from arbitrary read chunks with a
// bounded buffer.
package lineproto
