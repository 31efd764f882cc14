// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracker defines the slice of the tracking engine that the
// bridge depends on.
//
// The engine itself (pose estimation, filtering, skeletal solving) is
// not part of this module. The bridge only needs to read a tracker's
// current pose, write a pose into a tracker, mark new data with
// DataTick, and read or set the tracker's connectivity [Status]. The
// [Tracker] interface captures exactly that.
//
// [Local] is a self-contained implementation used by the posebridge
// daemon's built-in engine loop and by tests.
package tracker
