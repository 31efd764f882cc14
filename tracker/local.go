// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bureau-foundation/posebridge/lib/clock"
)

// Local is an in-memory Tracker. A new Local starts at the origin with
// the unit rotation and the given status.
type Local struct {
	name  string
	clock clock.Clock

	mu       sync.Mutex
	position r3.Vec
	rotation quat.Number
	status   Status
	ticks    uint64
	lastTick time.Time
}

// NewLocal returns a tracker named name. A nil clock selects the real
// clock.
func NewLocal(name string, status Status, timeSource clock.Clock) *Local {
	if timeSource == nil {
		timeSource = clock.Real()
	}
	return &Local{
		name:     name,
		clock:    timeSource,
		rotation: quat.Number{Real: 1},
		status:   status,
	}
}

func (l *Local) Name() string { return l.name }

func (l *Local) Position() r3.Vec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *Local) Rotation() quat.Number {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotation
}

func (l *Local) SetPosition(position r3.Vec) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = position
}

func (l *Local) SetRotation(rotation quat.Number) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotation = rotation
}

func (l *Local) DataTick() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks++
	l.lastTick = now
}

func (l *Local) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Local) SetStatus(status Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = status
}

// Ticks returns how many times DataTick has been called and when it was
// last called.
func (l *Local) Ticks() (uint64, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks, l.lastTick
}
