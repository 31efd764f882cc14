// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"strconv"
	"time"

	"github.com/bureau-foundation/posebridge/lib/lineproto"
)

const (
	// DefaultPrimaryName is the channel the runtime streams the head
	// pose on.
	DefaultPrimaryName = "HMDPipe"

	// DefaultSecondaryPrefix is suffixed with the zero-based tracker
	// index to name each secondary channel.
	DefaultSecondaryPrefix = "TrackPipe"

	// DefaultIdleInterval caps the loop at about 200 iterations per
	// second while no head pose arrives.
	DefaultIdleInterval = 5 * time.Millisecond
)

// Config holds the worker's tunables. Zero values select the defaults.
type Config struct {
	PrimaryName     string
	SecondaryPrefix string
	IdleInterval    time.Duration
	ReadBufferSize  int
	MaxLineLength   int
}

func (c Config) withDefaults() Config {
	if c.PrimaryName == "" {
		c.PrimaryName = DefaultPrimaryName
	}
	if c.SecondaryPrefix == "" {
		c.SecondaryPrefix = DefaultSecondaryPrefix
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = DefaultIdleInterval
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = lineproto.ReadBufferSize
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = lineproto.MaxLineLength
	}
	return c
}

// SecondaryName returns the channel name for tracker index.
func (c Config) SecondaryName(index int) string {
	prefix := c.SecondaryPrefix
	if prefix == "" {
		prefix = DefaultSecondaryPrefix
	}
	return prefix + strconv.Itoa(index)
}
