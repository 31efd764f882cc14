// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for posebridge binaries:
// reporting a fatal error to stderr before or after the structured
// logger exists, and exiting.
package process
