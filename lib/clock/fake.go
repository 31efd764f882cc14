// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// It is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*waiter
	changed *sync.Cond
}

type waiter struct {
	deadline time.Time
	channel  chan time.Time
	// period is non-zero for tickers, which re-arm after firing.
	period  time.Duration
	stopped bool
}

// Fake returns a FakeClock reading initial.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{now: initial}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// Now returns the fake time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After registers a one-shot waiter firing once the clock reaches
// now+d.
func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- f.now
		return channel
	}
	f.addLocked(&waiter{deadline: f.now.Add(d), channel: channel})
	return channel
}

// NewTicker registers a periodic waiter.
func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	channel := make(chan time.Time, 1)
	registered := &waiter{deadline: f.now.Add(d), channel: channel, period: d}
	f.addLocked(registered)
	return &Ticker{
		C: channel,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			registered.stopped = true
		},
	}
}

// Sleep blocks until the clock has been advanced by at least d.
func (f *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-f.After(d)
}

// Advance moves the clock forward by d and fires every waiter whose
// deadline is reached, in deadline order. Ticker sends never block.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	target := f.now

	var due []*waiter
	remaining := f.pending[:0]
	for _, pending := range f.pending {
		switch {
		case pending.stopped:
		case !pending.deadline.After(target):
			due = append(due, pending)
			if pending.period > 0 {
				// Collapse missed periods into one tick, as time.Ticker does.
				for !pending.deadline.After(target) {
					pending.deadline = pending.deadline.Add(pending.period)
				}
				remaining = append(remaining, pending)
			}
		default:
			remaining = append(remaining, pending)
		}
	}
	f.pending = remaining
	f.changed.Broadcast()
	f.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, fired := range due {
		select {
		case fired.channel <- target:
		default:
		}
	}
}

// WaitForTimers blocks until at least n waiters are pending. Use it to
// make sure a goroutine has started waiting before calling Advance.
func (f *FakeClock) WaitForTimers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.pendingLocked() < n {
		f.changed.Wait()
	}
}

// PendingCount returns the number of active waiters.
func (f *FakeClock) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingLocked()
}

func (f *FakeClock) addLocked(added *waiter) {
	f.pending = append(f.pending, added)
	f.changed.Broadcast()
}

func (f *FakeClock) pendingLocked() int {
	count := 0
	for _, pending := range f.pending {
		if !pending.stopped {
			count++
		}
	}
	return count
}
