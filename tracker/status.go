// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

// Status is a tracker's connectivity state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusOK
	StatusBusy
	StatusError
	StatusOccluded
	StatusTimedOut
)

// SendData reports whether a tracker in this state should have its pose
// forwarded to consumers.
func (s Status) SendData() bool {
	switch s {
	case StatusOK, StatusBusy, StatusOccluded:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusOK:
		return "ok"
	case StatusBusy:
		return "busy"
	case StatusError:
		return "error"
	case StatusOccluded:
		return "occluded"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
