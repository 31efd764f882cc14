// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(linux || darwin || freebsd)

package channel

import (
	"fmt"
	"runtime"
	"time"
)

func listenUnix(path string, connectTimeout, ioTimeout time.Duration, socketBuffer int) (Pipe, error) {
	return nil, fmt.Errorf("unix socket channels are not supported on %s", runtime.GOOS)
}
