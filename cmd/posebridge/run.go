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

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/posebridge/bridge"
	"github.com/bureau-foundation/posebridge/channel"
	"github.com/bureau-foundation/posebridge/engine"
	"github.com/bureau-foundation/posebridge/lib/clock"
	"github.com/bureau-foundation/posebridge/lib/config"
	"github.com/bureau-foundation/posebridge/lib/service"
	"github.com/bureau-foundation/posebridge/lib/version"
	"github.com/bureau-foundation/posebridge/tracker"
)

func runCommand(args []string) error {
	var configPath string
	var verbose bool
	flagSet := newFlagSet("run")
	flagSet.StringVar(&configPath, "config", "", "path to posebridge.yaml")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, cfg.Logging, verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// daemon is one bridge with its engine tick and status socket.
type daemon struct {
	bridge   *bridge.Bridge
	loop     *engine.Loop
	status   *service.SocketServer
	hmd      *tracker.Local
	trackers []*tracker.Local
}

func newDaemon(cfg *config.Config, timeSource clock.Clock, logger *slog.Logger) *daemon {
	d := &daemon{
		hmd: tracker.NewLocal("head", tracker.StatusDisconnected, timeSource),
	}
	bodies := make([]tracker.Tracker, len(cfg.Bridge.Trackers))
	for i, name := range cfg.Bridge.Trackers {
		local := tracker.NewLocal(name, tracker.StatusOK, timeSource)
		d.trackers = append(d.trackers, local)
		bodies[i] = local
	}

	factory := &channel.UnixFactory{
		Directory:      cfg.Bridge.SocketDirectory,
		ConnectTimeout: cfg.Bridge.ConnectTimeout,
		IOTimeout:      cfg.Bridge.IOTimeout,
		SocketBuffer:   cfg.Bridge.SocketBuffer,
	}
	d.bridge = bridge.New(bridge.Config{
		PrimaryName:     cfg.Bridge.PrimaryName,
		SecondaryPrefix: cfg.Bridge.SecondaryPrefix,
		IdleInterval:    cfg.Bridge.IdleInterval,
		ReadBufferSize:  cfg.Bridge.ReadBufferSize,
		MaxLineLength:   cfg.Bridge.MaxLineLength,
	}, d.hmd, bodies, factory, bridge.WithLogger(logger), bridge.WithClock(timeSource))

	d.loop = &engine.Loop{
		Clock:    timeSource,
		Interval: cfg.Engine.Interval,
		Logger:   logger.With("component", "engine"),
	}
	d.loop.Add(d.bridge)

	if cfg.Status.Enabled {
		d.status = service.NewSocketServer(cfg.Status.SocketPath, logger.With("component", "status"))
		d.status.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
			return d.bridge.Snapshot(), nil
		})
		d.status.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
			return version.Current(), nil
		})
	}
	return d
}

// serve runs the daemon until ctx is cancelled or the bridge fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	d := newDaemon(cfg, clock.Real(), logger)

	logger.Info("posebridge starting",
		"version", version.Info(),
		"socket_directory", cfg.Bridge.SocketDirectory,
		"trackers", cfg.Bridge.Trackers,
	)
	if err := d.bridge.Start(ctx); err != nil {
		return err
	}
	defer d.bridge.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.loop.Run(ctx)
	}()

	statusDone := make(chan error, 1)
	statusPending := d.status != nil
	if statusPending {
		go func() { statusDone <- d.status.Serve(ctx) }()
	}

	var err error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-d.bridge.Done():
		err = d.bridge.Err()
	case err = <-statusDone:
		statusPending = false
		if err != nil {
			err = fmt.Errorf("status socket: %w", err)
		}
	}

	cancel()
	d.bridge.Stop()
	<-loopDone
	if statusPending {
		if statusErr := <-statusDone; statusErr != nil && err == nil {
			err = fmt.Errorf("status socket: %w", statusErr)
		}
	}
	return err
}
