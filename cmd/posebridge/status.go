// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/posebridge/bridge"
	"github.com/bureau-foundation/posebridge/lib/codec"
	"github.com/bureau-foundation/posebridge/lib/process"
	"github.com/bureau-foundation/posebridge/lib/service"
)

// statusNotRunning is the exit code when the bridge reports a fatal
// error, so scripts can tell "daemon down" from "bridge failed".
const statusNotRunning = 3

func statusCommand(args []string, stdout io.Writer) error {
	var configPath, socketPath string
	var diagnose bool
	var timeout time.Duration
	flagSet := newFlagSet("status")
	flagSet.StringVar(&configPath, "config", "", "path to posebridge.yaml")
	flagSet.StringVar(&socketPath, "socket", "", "status socket path (overrides the configuration)")
	flagSet.BoolVar(&diagnose, "diagnose", false, "print the raw CBOR response in diagnostic notation")
	flagSet.DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for the daemon")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if socketPath == "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		socketPath = cfg.Status.SocketPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return printStatus(ctx, socketPath, diagnose, stdout)
}

func printStatus(ctx context.Context, socketPath string, diagnose bool, stdout io.Writer) error {
	if diagnose {
		response, err := service.CallRaw(ctx, socketPath, "status")
		if err != nil {
			return err
		}
		notation, err := codec.Diagnose(response.Data)
		if err != nil {
			return fmt.Errorf("decoding status response: %w", err)
		}
		fmt.Fprintln(stdout, notation)
		return nil
	}

	var snapshot bridge.Snapshot
	if err := service.Call(ctx, socketPath, "status", &snapshot); err != nil {
		return err
	}
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return err
	}
	if snapshot.Error != "" {
		return &process.ExitError{Code: statusNotRunning, Err: fmt.Errorf("bridge stopped: %s", snapshot.Error)}
	}
	return nil
}
