// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for posebridge.
//
// Configuration is loaded from a single file named by either the
// POSEBRIDGE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). The file is merged over [Default], so it only
// needs the keys it changes. There is no file discovery.
//
// Variable expansion is performed on path fields after loading:
// ${VAR} and ${VAR:-default} patterns are expanded from the process
// environment. No environment variable overrides a config value
// directly.
//
// [Config.Validate] reports every problem at once, joined with
// errors.Join.
//
// This package depends on no other posebridge packages.
package config
