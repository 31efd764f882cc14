// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a short directory under /tmp for Unix domain
// sockets. Socket paths are limited to 108 bytes (sun_path), which
// t.TempDir() paths can exceed.
//
// [RequireReceive], [RequireClosed] and [Eventually] wrap the select
// with a wall-clock timeout that keeps a broken test from hanging. They
// are the only place tests use real timeouts; everything else drives
// time through lib/clock.Fake.
//
// [UniqueName] produces distinct channel names for tests that share a
// socket directory.
//
// All helpers fail the test with t.Fatalf rather than returning errors.
package testutil
