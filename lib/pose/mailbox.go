// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pose

import "sync/atomic"

// Mailbox is a single-slot handoff from one producer goroutine to one
// consumer goroutine. The zero value is empty and ready to use.
type Mailbox struct {
	slot  atomic.Pointer[Sample]
	fresh atomic.Bool
}

// Post replaces the slot with a copy of sample and marks it fresh. An
// unconsumed previous sample is discarded.
func (m *Mailbox) Post(sample Sample) {
	m.slot.Store(&sample)
	m.fresh.Store(true)
}

// Take consumes the fresh sample, if any. It returns false when nothing
// has been posted since the last successful Take.
func (m *Mailbox) Take() (Sample, bool) {
	if !m.fresh.CompareAndSwap(true, false) {
		return Sample{}, false
	}
	// Post stores the slot before setting fresh, so the slot is non-nil
	// here. A Post racing with this load can only make the value newer.
	return *m.slot.Load(), true
}

// Pending reports whether a posted sample is waiting to be taken.
func (m *Mailbox) Pending() bool {
	return m.fresh.Load()
}
