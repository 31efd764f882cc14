// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/posebridge/bridge"
	"github.com/bureau-foundation/posebridge/lib/config"
	"github.com/bureau-foundation/posebridge/lib/service"
	"github.com/bureau-foundation/posebridge/lib/testutil"
)

func TestNewLoggerFormats(t *testing.T) {
	var output bytes.Buffer
	logger, err := newLogger(&output, config.LoggingConfig{Level: "warn", Format: "auto"}, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "channel", "HMDPipe")

	// A bytes.Buffer is not a terminal, so auto selects JSON.
	var record map[string]any
	if err := json.Unmarshal(output.Bytes(), &record); err != nil {
		t.Fatalf("log output is not one JSON record: %q", output.String())
	}
	if record["msg"] != "shown" || record["channel"] != "HMDPipe" {
		t.Errorf("record = %v", record)
	}

	output.Reset()
	logger, err = newLogger(&output, config.LoggingConfig{Level: "error", Format: "text"}, true)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("verbose wins")
	if !strings.Contains(output.String(), "msg=\"verbose wins\"") {
		t.Errorf("text output = %q", output.String())
	}

	if _, err := newLogger(&output, config.LoggingConfig{Level: "loud", Format: "text"}, false); err == nil {
		t.Error("newLogger accepted an unknown level")
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run([]string{"launch"}); err == nil {
		t.Fatal("run accepted an unknown command")
	}
}

func dialChannel(t *testing.T, path string) net.Conn {
	t.Helper()
	var conn net.Conn
	testutil.Eventually(t, 5*time.Second, func() bool {
		var err error
		conn, err = net.Dial("unix", path)
		return err == nil
	}, "dialing %s", path)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readExactly(t *testing.T, conn net.Conn, n int) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buffer := make([]byte, n)
	if _, err := io.ReadFull(conn, buffer); err != nil {
		t.Fatalf("reading %d bytes: %v", n, err)
	}
	return string(buffer)
}

func TestServeEndToEnd(t *testing.T) {
	directory := testutil.SocketDir(t)
	cfg := config.Default()
	cfg.Bridge.SocketDirectory = filepath.Join(directory, "channels")
	cfg.Bridge.Trackers = []string{"waist", "left_foot"}
	cfg.Status.SocketPath = filepath.Join(directory, "status.sock")
	cfg.Logging.Level = "error"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var logs bytes.Buffer
	logger, err := newLogger(&logs, cfg.Logging, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- serve(ctx, cfg, logger) }()

	head := dialChannel(t, filepath.Join(cfg.Bridge.SocketDirectory, "HMDPipe.sock"))
	waist := dialChannel(t, filepath.Join(cfg.Bridge.SocketDirectory, "TrackPipe0.sock"))
	foot := dialChannel(t, filepath.Join(cfg.Bridge.SocketDirectory, "TrackPipe1.sock"))

	for _, conn := range []net.Conn{waist, foot} {
		if got := readExactly(t, conn, 4); got != "2 0\x00" {
			t.Fatalf("handshake = %q, want %q", got, "2 0\x00")
		}
	}

	if _, err := head.Write([]byte("0.1 1.6 -0.2 1 0 0 0\n")); err != nil {
		t.Fatalf("writing head pose: %v", err)
	}
	frame := "0 0 0 1 0 0 0\n\x00"
	for _, conn := range []net.Conn{waist, foot} {
		if got := readExactly(t, conn, len(frame)); got != frame {
			t.Fatalf("body frame = %q, want %q", got, frame)
		}
	}

	var snapshot bridge.Snapshot
	testutil.Eventually(t, 5*time.Second, func() bool {
		if err := service.Call(ctx, cfg.Status.SocketPath, "status", &snapshot); err != nil {
			return false
		}
		return snapshot.Counters.LinesDecoded == 1
	}, "status reports the decoded head pose")
	if !snapshot.Running || snapshot.TrackerCount != 2 || len(snapshot.Channels) != 3 {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	var output bytes.Buffer
	if err := printStatus(ctx, cfg.Status.SocketPath, false, &output); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	if !strings.Contains(output.String(), `"tracker_count": 2`) {
		t.Errorf("status output = %s", output.String())
	}

	cancel()
	if err := testutil.RequireReceive(t, served, 5*time.Second, "daemon shutdown"); err != nil {
		t.Fatalf("serve: %v", err)
	}
}
