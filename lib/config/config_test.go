// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posebridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	cfg := Default()
	cfg.ExpandVariables()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Bridge.SocketDirectory != "/run/user/1000/posebridge" {
		t.Errorf("socket_directory = %q", cfg.Bridge.SocketDirectory)
	}
	if cfg.Bridge.PrimaryName != "HMDPipe" || cfg.Bridge.SecondaryPrefix != "TrackPipe" {
		t.Errorf("channel names = %q, %q", cfg.Bridge.PrimaryName, cfg.Bridge.SecondaryPrefix)
	}
}

func TestExpandVariablesDefault(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	cfg := Default()
	cfg.ExpandVariables()
	if cfg.Status.SocketPath != "/tmp/posebridge/status.sock" {
		t.Errorf("status.socket_path = %q, want the fallback", cfg.Status.SocketPath)
	}
}

func TestLoadRequiresEnvironment(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := Load()
	if err == nil || !strings.HasPrefix(err.Error(), "POSEBRIDGE_CONFIG environment variable not set") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Setenv("POSEBRIDGE_TEST_ROOT", "/srv/vr")
	path := writeConfig(t, `
bridge:
  socket_directory: ${POSEBRIDGE_TEST_ROOT}/sockets
  trackers: [chest, left_knee]
  idle_interval: 2ms
engine:
  interval: 11ms
logging:
  level: debug
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := Default()
	want.ExpandVariables()
	want.Bridge.SocketDirectory = "/srv/vr/sockets"
	want.Bridge.Trackers = []string{"chest", "left_knee"}
	want.Bridge.IdleInterval = 2 * time.Millisecond
	want.Engine.Interval = 11 * time.Millisecond
	want.Logging.Level = "debug"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loaded config (-want +got):\n%s", diff)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
	if _, err := LoadFile(writeConfig(t, "bridge: [unclosed")); err == nil {
		t.Error("LoadFile of invalid YAML succeeded")
	}
	if _, err := LoadFile(writeConfig(t, "bridge:\n  idle_interval: soon\n")); err == nil {
		t.Error("LoadFile with an invalid duration succeeded")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.ExpandVariables()
	cfg.Bridge.PrimaryName = "bad/name"
	cfg.Bridge.Trackers = []string{"waist", "waist", ""}
	cfg.Bridge.IdleInterval = 0
	cfg.Bridge.ReadBufferSize = -1
	cfg.Engine.Interval = 0
	cfg.Status.SocketPath = ""
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	for _, fragment := range []string{
		"bridge.primary_name",
		`duplicate tracker "waist"`,
		"bridge.trackers[2] is empty",
		"bridge.idle_interval",
		"bridge.read_buffer_size",
		"engine.interval",
		"status.socket_path is required",
		"logging.level",
		"logging.format",
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("Validate() error missing %q:\n%v", fragment, err)
		}
	}
}

func TestValidateSocketPathLength(t *testing.T) {
	cfg := Default()
	cfg.ExpandVariables()
	cfg.Bridge.SocketDirectory = "/" + strings.Repeat("d", 100)
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "exceeds 107 bytes") {
		t.Fatalf("Validate() = %v, want a socket path length error", err)
	}
}

func TestStatusDisabledNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.ExpandVariables()
	cfg.Status.Enabled = false
	cfg.Status.SocketPath = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestEnsurePaths(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Bridge.SocketDirectory = filepath.Join(root, "sockets")
	cfg.Status.SocketPath = filepath.Join(root, "status", "status.sock")
	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	for _, directory := range []string{"sockets", "status"} {
		if info, err := os.Stat(filepath.Join(root, directory)); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", directory, err)
		}
	}
}
