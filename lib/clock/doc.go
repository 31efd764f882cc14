// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The bridge worker waits a fixed idle interval whenever an iteration
// produced no head pose, and the engine loop ticks at a fixed rate.
// Both take a [Clock] so tests can drive them deterministically:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go worker.cycle(ctx)
//	fake.WaitForTimers(1)            // the worker is now idle-waiting
//	fake.Advance(5 * time.Millisecond)
//
// [Real] delegates to the time package.
package clock
