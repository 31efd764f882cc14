// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pose

import "sync/atomic"

// Cell holds the latest sample for one tracker. Stores and loads swap
// whole values. The zero value loads as [Identity].
type Cell struct {
	value atomic.Pointer[Sample]
}

// Store publishes a copy of sample.
func (c *Cell) Store(sample Sample) {
	c.value.Store(&sample)
}

// Load returns the most recently stored sample.
func (c *Cell) Load() Sample {
	if current := c.value.Load(); current != nil {
		return *current
	}
	return Identity()
}
