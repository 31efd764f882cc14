// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

// State is an endpoint's lifecycle state.
type State int32

const (
	// StateCreated: the channel exists but no peer has connected.
	StateCreated State = iota
	// StateOpen: a peer is connected and the channel carries data.
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
