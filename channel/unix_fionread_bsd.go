// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || freebsd

package channel

// fionread is FIONREAD, _IOR('f', 127, int); x/sys/unix does not export it
// on these platforms.
const fionread = 0x4004667f
