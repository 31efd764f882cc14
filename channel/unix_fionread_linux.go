// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package channel

import "golang.org/x/sys/unix"

// fionread is FIONREAD; on Linux x/sys/unix exports it as SIOCINQ.
const fionread = unix.SIOCINQ
