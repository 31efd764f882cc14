// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bureau-foundation/posebridge/lib/clock"
	"github.com/bureau-foundation/posebridge/lib/lineproto"
	"github.com/bureau-foundation/posebridge/lib/netutil"
	"github.com/bureau-foundation/posebridge/lib/pose"
)

type simulatorOptions struct {
	SocketDirectory string
	PrimaryName     string
	SecondaryPrefix string
	Trackers        int
	Rate            float64
	Duration        time.Duration
	ConnectTimeout  time.Duration
}

type simulator struct {
	options simulatorOptions
	clock   clock.Clock
	logger  *slog.Logger

	sent     atomic.Uint64
	received []atomic.Uint64
}

func newSimulator(options simulatorOptions, timeSource clock.Clock, logger *slog.Logger) *simulator {
	return &simulator{
		options:  options,
		clock:    timeSource,
		logger:   logger,
		received: make([]atomic.Uint64, options.Trackers),
	}
}

func (s *simulator) socketPath(name string) string {
	return filepath.Join(s.options.SocketDirectory, name+".sock")
}

// dial retries until the daemon's socket accepts or the connect timeout
// elapses.
func (s *simulator) dial(ctx context.Context, name string) (net.Conn, error) {
	deadline := s.clock.Now().Add(s.options.ConnectTimeout)
	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "unix", s.socketPath(name))
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !s.clock.Now().Before(deadline) {
			return nil, fmt.Errorf("connecting to %s: %w", name, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.clock.After(50 * time.Millisecond):
		}
	}
}

// Run connects every channel, verifies the handshakes and streams head
// poses until ctx is done or a channel fails.
func (s *simulator) Run(ctx context.Context) error {
	head, err := s.dial(ctx, s.options.PrimaryName)
	if err != nil {
		return err
	}
	defer head.Close()

	readers := make([]*bufio.Reader, s.options.Trackers)
	for i := range s.options.Trackers {
		name := s.options.SecondaryPrefix + strconv.Itoa(i)
		conn, err := s.dial(ctx, name)
		if err != nil {
			return err
		}
		defer conn.Close()
		// Unblocks the handshake read and the receiver on shutdown.
		context.AfterFunc(ctx, func() { conn.Close() })

		reader := bufio.NewReader(conn)
		if err := s.checkHandshake(name, reader); err != nil {
			return err
		}
		readers[i] = reader
	}
	s.logger.Info("all channels connected", "trackers", s.options.Trackers)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wait sync.WaitGroup
	for i, reader := range readers {
		wait.Add(1)
		go func() {
			defer wait.Done()
			if err := s.receive(i, reader); err != nil {
				cancel(err)
			}
		}()
	}

	err = s.stream(ctx, head)
	head.Close()
	cancel(err)
	wait.Wait()
	s.logSummary()

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return err
}

func (s *simulator) checkHandshake(name string, reader *bufio.Reader) error {
	frame, err := reader.ReadBytes(0)
	if err != nil {
		return fmt.Errorf("reading handshake on %s: %w", name, err)
	}
	count, err := lineproto.DecodeHandshake(frame)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if count != s.options.Trackers {
		return fmt.Errorf("%s: daemon serves %d trackers, expected %d", name, count, s.options.Trackers)
	}
	s.logger.Debug("handshake ok", "channel", name, "trackers", count)
	return nil
}

// stream writes one head pose per tick.
func (s *simulator) stream(ctx context.Context, head net.Conn) error {
	interval := time.Duration(float64(time.Second) / s.options.Rate)
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	summary := s.clock.NewTicker(time.Second)
	defer summary.Stop()

	start := s.clock.Now()
	var line []byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-summary.C:
			s.logSummary()
			continue
		case now := <-ticker.C:
			line = lineproto.AppendPose(line[:0], headPose(now.Sub(start).Seconds()))
			if _, err := head.Write(line); err != nil {
				return fmt.Errorf("writing head pose: %w", err)
			}
			s.sent.Add(1)
		}
	}
}

// receive decodes body frames until the connection closes.
func (s *simulator) receive(index int, reader *bufio.Reader) error {
	logger := s.logger.With("tracker_index", index)
	for {
		frame, err := reader.ReadBytes(0)
		if err != nil {
			if netutil.IsExpectedCloseError(err) {
				return nil
			}
			return fmt.Errorf("reading body frame %d: %w", index, err)
		}
		sample, err := lineproto.DecodePose(frame[:len(frame)-1])
		if err != nil {
			logger.Warn("undecodable body frame", "frame", string(frame), "error", err)
			continue
		}
		s.received[index].Add(1)
		logger.Debug("body frame",
			"position", sample.Position,
			"rotation", sample.Rotation,
		)
	}
}

func (s *simulator) logSummary() {
	received := make([]uint64, len(s.received))
	for i := range s.received {
		received[i] = s.received[i].Load()
	}
	s.logger.Info("simulator progress", "head_poses_sent", s.sent.Load(), "body_frames_received", received)
}

// headPose is a seated user swaying gently while looking left and
// right: 10 cm lateral sway, 2 cm bob, +/-30 degrees of yaw.
func headPose(seconds float64) pose.Sample {
	yaw := math.Pi / 6 * math.Sin(0.5*seconds)
	// exp(θ/2 · j) is a rotation of θ about the vertical axis.
	rotation := quat.Exp(quat.Number{Jmag: yaw / 2})
	rotation = quat.Scale(1/quat.Abs(rotation), rotation)
	return pose.Sample{
		Position: r3.Vec{
			X: 0.1 * math.Sin(0.3*seconds),
			Y: 1.6 + 0.02*math.Sin(2*seconds),
			Z: 0,
		},
		Rotation: rotation,
	}
}
