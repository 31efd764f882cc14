// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for posebridge
// binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/posebridge/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When GitCommit is not injected, [Current] falls back to the VCS
// revision the Go toolchain stamps into the binary, if any.
package version
