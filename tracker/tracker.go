// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tracker is the engine's view of one tracked point. Implementations
// must be safe for concurrent use: the bridge sets the head tracker's
// status from its I/O goroutine while the engine reads it.
type Tracker interface {
	Name() string

	Position() r3.Vec
	Rotation() quat.Number
	SetPosition(r3.Vec)
	SetRotation(quat.Number)

	// DataTick records that a fresh sample was just written.
	DataTick()

	Status() Status
	SetStatus(Status)
}
