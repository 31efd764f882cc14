// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/posebridge/lib/clock"
	"github.com/bureau-foundation/posebridge/lib/process"
	"github.com/bureau-foundation/posebridge/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	options := simulatorOptions{}
	var verbose bool

	flagSet := pflag.NewFlagSet("posebridge-hmdsim", pflag.ContinueOnError)
	flagSet.StringVar(&options.SocketDirectory, "socket-dir", "/tmp/posebridge", "directory holding the channel sockets")
	flagSet.StringVar(&options.PrimaryName, "primary", "HMDPipe", "head channel name")
	flagSet.StringVar(&options.SecondaryPrefix, "prefix", "TrackPipe", "body channel name prefix")
	flagSet.IntVarP(&options.Trackers, "trackers", "n", 3, "number of body channels")
	flagSet.Float64Var(&options.Rate, "rate", 90, "head poses per second")
	flagSet.DurationVar(&options.Duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	flagSet.DurationVar(&options.ConnectTimeout, "connect-timeout", 10*time.Second, "how long to wait for the daemon's sockets")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log every received frame")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("posebridge-hmdsim")
		return nil
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if options.Rate <= 0 {
		return fmt.Errorf("--rate must be positive")
	}
	if options.Trackers < 0 {
		return fmt.Errorf("--trackers must not be negative")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if options.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Duration)
		defer cancel()
	}

	sim := newSimulator(options, clock.Real(), logger)
	err := sim.Run(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
