// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/bureau-foundation/posebridge/bridge"
	"github.com/bureau-foundation/posebridge/channel"
	"github.com/bureau-foundation/posebridge/lib/clock"
	"github.com/bureau-foundation/posebridge/lib/testutil"
	"github.com/bureau-foundation/posebridge/tracker"
)

func TestHeadPoseIsUnitRotation(t *testing.T) {
	require.Equal(t, quat.Number{Real: 1}, headPose(0).Rotation)
	for _, seconds := range []float64{0.5, 1, 2.7, 10, 123.4} {
		sample := headPose(seconds)
		require.InDelta(t, 1, quat.Abs(sample.Rotation), 1e-12, "t=%v", seconds)
		require.InDelta(t, 1.6, sample.Position.Y, 0.02+1e-12)
		require.InDelta(t, 0, sample.Rotation.Imag, 1e-12, "rotation is yaw only")
		require.LessOrEqual(t, math.Abs(sample.Position.X), 0.1)
	}
}

// startBridge runs a bridge with a real socket factory and returns its
// socket directory.
func startBridge(t *testing.T, trackers int) string {
	t.Helper()
	directory := testutil.SocketDir(t)
	bodies := make([]tracker.Tracker, trackers)
	for i := range bodies {
		bodies[i] = tracker.NewLocal("body", tracker.StatusOK, nil)
	}
	b := bridge.New(bridge.Config{}, tracker.NewLocal("head", tracker.StatusDisconnected, nil), bodies,
		&channel.UnixFactory{Directory: directory}, bridge.WithLogger(slog.New(slog.DiscardHandler)))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(b.Stop)
	return directory
}

func testSimulator(directory string, trackers int) *simulator {
	return newSimulator(simulatorOptions{
		SocketDirectory: directory,
		PrimaryName:     bridge.DefaultPrimaryName,
		SecondaryPrefix: bridge.DefaultSecondaryPrefix,
		Trackers:        trackers,
		Rate:            200,
		ConnectTimeout:  5 * time.Second,
	}, clock.Real(), slog.New(slog.DiscardHandler))
}

func TestSimulatorReceivesBodyFrames(t *testing.T) {
	directory := startBridge(t, 2)
	sim := testSimulator(directory, 2)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- sim.Run(ctx) }()

	testutil.Eventually(t, 10*time.Second, func() bool {
		return sim.sent.Load() > 0 && sim.received[0].Load() > 0 && sim.received[1].Load() > 0
	}, "body frames received on every channel")

	cancel()
	err := testutil.RequireReceive(t, finished, 5*time.Second, "simulator stopped")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSimulatorRejectsTrackerCountMismatch(t *testing.T) {
	directory := startBridge(t, 3)
	err := testSimulator(directory, 1).Run(context.Background())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "daemon serves 3 trackers, expected 1"), err.Error())
}

func TestSimulatorConnectTimeout(t *testing.T) {
	sim := testSimulator(testutil.SocketDir(t), 1)
	sim.options.ConnectTimeout = 100 * time.Millisecond
	err := sim.Run(context.Background())
	require.ErrorContains(t, err, "connecting to HMDPipe")
}
