// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/posebridge/lib/codec"
	"github.com/bureau-foundation/posebridge/lib/testutil"
)

type pong struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// startServer runs a server with the given handlers and returns its
// socket path. The server is stopped when the test completes.
func startServer(t *testing.T, handlers map[string]ActionFunc) string {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "status.sock")
	server := NewSocketServer(socketPath, slog.New(slog.DiscardHandler))
	for action, handler := range handlers {
		server.Handle(action, handler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server listening")

	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, errs, 5*time.Second, "server shutdown"); err != nil {
			t.Errorf("Serve: %v", err)
		}
		if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
			t.Errorf("socket file left behind: %v", err)
		}
	})
	return socketPath
}

func TestCallDecodesData(t *testing.T) {
	socketPath := startServer(t, map[string]ActionFunc{
		"ping": func(ctx context.Context, raw []byte) (any, error) {
			return pong{Message: "pong", Count: 3}, nil
		},
	})

	var result pong
	if err := Call(context.Background(), socketPath, "ping", &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != (pong{Message: "pong", Count: 3}) {
		t.Fatalf("result = %+v", result)
	}
}

func TestCallNilResult(t *testing.T) {
	socketPath := startServer(t, map[string]ActionFunc{
		"ping": func(ctx context.Context, raw []byte) (any, error) { return nil, nil },
	})
	response, err := CallRaw(context.Background(), socketPath, "ping")
	if err != nil {
		t.Fatalf("CallRaw: %v", err)
	}
	if !response.OK || len(response.Data) != 0 {
		t.Fatalf("response = %+v, want ok without data", response)
	}
}

func TestHandlerErrorBecomesActionError(t *testing.T) {
	socketPath := startServer(t, map[string]ActionFunc{
		"status": func(ctx context.Context, raw []byte) (any, error) {
			return nil, errors.New("bridge not started")
		},
	})

	err := Call(context.Background(), socketPath, "status", nil)
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("Call error = %v, want *ActionError", err)
	}
	if actionErr.Action != "status" || actionErr.Message != "bridge not started" {
		t.Fatalf("ActionError = %+v", actionErr)
	}
}

func TestUnknownAction(t *testing.T) {
	socketPath := startServer(t, nil)
	err := Call(context.Background(), socketPath, "reboot", nil)
	var actionErr *ActionError
	if !errors.As(err, &actionErr) || actionErr.Message != `unknown action "reboot"` {
		t.Fatalf("Call error = %v", err)
	}
}

func TestMissingAction(t *testing.T) {
	socketPath := startServer(t, nil)

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if err := codec.NewEncoder(conn).Encode(map[string]any{"target": "x"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if response.OK || response.Error != "missing required field: action" {
		t.Fatalf("response = %+v", response)
	}
}

func TestCallWithoutServer(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "absent.sock")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := Call(ctx, socketPath, "status", nil)
	var actionErr *ActionError
	if err == nil || errors.As(err, &actionErr) {
		t.Fatalf("Call error = %v, want a connection error", err)
	}
}

func TestDuplicateHandlePanics(t *testing.T) {
	server := NewSocketServer("/unused", nil)
	server.Handle("ping", func(context.Context, []byte) (any, error) { return nil, nil })
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Handle did not panic")
		}
	}()
	server.Handle("ping", func(context.Context, []byte) (any, error) { return nil, nil })
}
