// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"sync/atomic"
	"time"
)

// counters are written by the worker and read by Snapshot.
type counters struct {
	iterations        atomic.Uint64
	idleWaits         atomic.Uint64
	bytesRead         atomic.Uint64
	linesDecoded      atomic.Uint64
	malformedLines    atomic.Uint64
	overflows         atomic.Uint64
	framesWritten     atomic.Uint64
	handshakesWritten atomic.Uint64
}

// Counters is a point-in-time copy of the worker's counters.
type Counters struct {
	Iterations        uint64 `json:"iterations"`
	IdleWaits         uint64 `json:"idle_waits"`
	BytesRead         uint64 `json:"bytes_read"`
	LinesDecoded      uint64 `json:"lines_decoded"`
	MalformedLines    uint64 `json:"malformed_lines"`
	Overflows         uint64 `json:"overflows"`
	FramesWritten     uint64 `json:"frames_written"`
	HandshakesWritten uint64 `json:"handshakes_written"`
}

func (c *counters) snapshot() Counters {
	return Counters{
		Iterations:        c.iterations.Load(),
		IdleWaits:         c.idleWaits.Load(),
		BytesRead:         c.bytesRead.Load(),
		LinesDecoded:      c.linesDecoded.Load(),
		MalformedLines:    c.malformedLines.Load(),
		Overflows:         c.overflows.Load(),
		FramesWritten:     c.framesWritten.Load(),
		HandshakesWritten: c.handshakesWritten.Load(),
	}
}

// ChannelStatus describes one channel in a Snapshot.
type ChannelStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// Snapshot is the bridge's externally visible status.
type Snapshot struct {
	ID           string          `json:"id"`
	Running      bool            `json:"running"`
	StartedAt    time.Time       `json:"started_at"`
	TrackerCount int             `json:"tracker_count"`
	Channels     []ChannelStatus `json:"channels,omitempty"`
	Counters     Counters        `json:"counters"`
	HeadPending  bool            `json:"head_pending"`
	Error        string          `json:"error,omitempty"`
}
