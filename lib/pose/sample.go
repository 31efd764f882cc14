// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pose

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is a position and orientation. The rotation is not required to
// be normalized; normalization is the consumer's concern.
type Sample struct {
	Position r3.Vec      `json:"position"`
	Rotation quat.Number `json:"rotation"`
}

// Identity returns a sample at the origin with the unit rotation.
func Identity() Sample {
	return Sample{Rotation: quat.Number{Real: 1}}
}

// Fields returns the seven wire-order components: x y z qw qx qy qz.
func (s Sample) Fields() [7]float64 {
	return [7]float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Rotation.Real, s.Rotation.Imag, s.Rotation.Jmag, s.Rotation.Kmag,
	}
}

// FromFields builds a sample from wire-order components.
func FromFields(fields [7]float64) Sample {
	return Sample{
		Position: r3.Vec{X: fields[0], Y: fields[1], Z: fields[2]},
		Rotation: quat.Number{Real: fields[3], Imag: fields[4], Jmag: fields[5], Kmag: fields[6]},
	}
}
