// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the module's standard CBOR configuration.
//
// The status socket speaks CBOR; everything user-facing (CLI output,
// logs, configuration) is JSON or YAML. This package holds the shared
// encoding and decoding modes so every caller encodes identically. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2) and writes
// time.Time values as RFC 3339 strings.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Types that are also rendered as JSON carry only `json` tags;
// fxamacker/cbor falls back to them when `cbor` tags are absent. Types
// that are only ever CBOR carry `cbor` tags. Never use both on one
// field.
package codec
