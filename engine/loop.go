// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine drives bridges from a fixed-rate tick, standing in for
// the tracking pipeline's own frame loop.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/posebridge/lib/clock"
)

// DefaultInterval is the tick period when Loop.Interval is zero.
const DefaultInterval = 10 * time.Millisecond

// Participant exchanges data with the engine once per tick.
// *bridge.Bridge satisfies it.
type Participant interface {
	DataRead()
	DataWrite()
}

// Loop calls DataRead on every participant and then DataWrite on every
// participant, once per tick.
type Loop struct {
	Clock    clock.Clock
	Interval time.Duration
	Logger   *slog.Logger

	mu           sync.Mutex
	participants []Participant
	ticks        uint64
}

// Add registers a participant. It may be called while Run is active.
func (l *Loop) Add(participant Participant) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.participants = append(l.participants, participant)
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	timeSource := l.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("engine loop started", "interval", interval)
	ticker := timeSource.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("engine loop stopped", "ticks", l.Ticks())
			return
		case <-ticker.C:
		}
		l.tick()
	}
}

func (l *Loop) tick() {
	l.mu.Lock()
	participants := l.participants
	l.mu.Unlock()

	for _, participant := range participants {
		participant.DataRead()
	}
	for _, participant := range participants {
		participant.DataWrite()
	}

	l.mu.Lock()
	l.ticks++
	l.mu.Unlock()
}
