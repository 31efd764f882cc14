// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/posebridge/channel"
	"github.com/bureau-foundation/posebridge/lib/clock"
	"github.com/bureau-foundation/posebridge/lib/lineproto"
	"github.com/bureau-foundation/posebridge/lib/netutil"
	"github.com/bureau-foundation/posebridge/lib/pose"
	"github.com/bureau-foundation/posebridge/tracker"
)

// mirror is the worker's copy of one body tracker. DataWrite stores into
// it from the engine goroutine; the worker loads from it.
type mirror struct {
	pose     pose.Cell
	sendData atomic.Bool
}

// worker runs the poll loop. Everything except mailbox, mirrors and
// stats is owned exclusively by the worker goroutine.
type worker struct {
	channels *channelSet
	hmd      tracker.Tracker
	mailbox  *pose.Mailbox
	mirrors  []mirror
	stats    *counters
	clock    clock.Clock
	idle     time.Duration
	logger   *slog.Logger

	readBuffer  []byte
	encodeBuf   []byte
	accumulator *lineproto.Accumulator
}

func newWorker(config Config, channels *channelSet, hmd tracker.Tracker, mailbox *pose.Mailbox, mirrors []mirror, stats *counters, timeSource clock.Clock, logger *slog.Logger) *worker {
	return &worker{
		channels:    channels,
		hmd:         hmd,
		mailbox:     mailbox,
		mirrors:     mirrors,
		stats:       stats,
		clock:       timeSource,
		idle:        config.IdleInterval,
		logger:      logger,
		readBuffer:  make([]byte, config.ReadBufferSize),
		encodeBuf:   make([]byte, 0, 128),
		accumulator: lineproto.NewAccumulator(config.MaxLineLength),
	}
}

// run loops until ctx is cancelled or an iteration fails. A panic in
// the loop body is returned as an error.
func (w *worker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			w.logger.Error("panic in bridge worker",
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("bridge: worker panic: %v", recovered)
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.cycle(ctx); err != nil {
			return err
		}
	}
}

// cycle runs one iteration and, if it decoded no head pose, waits the
// idle interval or until ctx is cancelled.
func (w *worker) cycle(ctx context.Context) error {
	hmdUpdated, err := w.iterate()
	if err != nil {
		return err
	}
	if hmdUpdated {
		return nil
	}
	w.stats.idleWaits.Add(1)
	select {
	case <-w.clock.After(w.idle):
	case <-ctx.Done():
	}
	return nil
}

// iterate connects pending channels and, once all are open, drains the
// primary channel and forwards the mirrors. It reports whether at least
// one head pose was decoded.
func (w *worker) iterate() (bool, error) {
	w.stats.iterations.Add(1)

	if err := w.channels.connectPending(w.onPrimaryOpen, w.onSecondaryOpen); err != nil {
		return false, err
	}
	if !w.channels.allOpen() {
		return false, nil
	}

	hmdUpdated, err := w.readPrimary()
	if err != nil {
		return false, w.ioFailure(w.channels.primary, err)
	}
	if !hmdUpdated {
		return false, nil
	}
	if err := w.writeSecondaries(); err != nil {
		return true, err
	}
	return true, nil
}

func (w *worker) onPrimaryOpen() {
	w.hmd.SetStatus(tracker.StatusOK)
}

func (w *worker) onSecondaryOpen(index int, endpoint *channel.Endpoint) error {
	w.encodeBuf = lineproto.AppendHandshake(w.encodeBuf[:0], len(w.mirrors))
	if err := endpoint.WriteAll(w.encodeBuf); err != nil {
		return w.ioFailure(endpoint, err)
	}
	w.stats.handshakesWritten.Add(1)
	w.logger.Debug("handshake sent", "channel", endpoint.Name(), "tracker_index", index)
	return nil
}

// readPrimary reads whatever the primary channel has buffered without
// waiting. It reads again only while the previous read filled the
// buffer and more bytes are still pending.
func (w *worker) readPrimary() (bool, error) {
	primary := w.channels.primary
	decoded := false

	available, err := primary.Available()
	if err != nil {
		return false, err
	}
	for available > 0 {
		n, err := primary.Read(w.readBuffer)
		if err != nil {
			return decoded, err
		}
		w.stats.bytesRead.Add(uint64(n))
		w.accumulator.Feed(w.readBuffer[:n], func(line []byte) {
			if w.decodeLine(line) {
				decoded = true
			}
		}, w.onOverflow)

		if n < len(w.readBuffer) {
			break
		}
		if available, err = primary.Available(); err != nil {
			return decoded, err
		}
	}
	return decoded, nil
}

func (w *worker) decodeLine(line []byte) bool {
	sample, err := lineproto.DecodePose(line)
	if err != nil {
		w.stats.malformedLines.Add(1)
		w.logger.Warn("discarding malformed pose line",
			"channel", w.channels.primary.Name(),
			"line", string(line),
			"error", err,
		)
		return false
	}
	w.stats.linesDecoded.Add(1)
	w.mailbox.Post(sample)
	return true
}

func (w *worker) onOverflow(dropped int) {
	w.stats.overflows.Add(1)
	w.logger.Error("pose line exceeded maximum length, discarding",
		"channel", w.channels.primary.Name(),
		"dropped_bytes", dropped,
	)
}

// writeSecondaries sends each mirror pose whose tracker may send.
func (w *worker) writeSecondaries() error {
	for index, endpoint := range w.channels.secondaries {
		if !endpoint.IsOpen() {
			continue
		}
		slot := &w.mirrors[index]
		if !slot.sendData.Load() {
			continue
		}
		w.encodeBuf = lineproto.AppendFrame(w.encodeBuf[:0], slot.pose.Load())
		if err := endpoint.WriteAll(w.encodeBuf); err != nil {
			return w.ioFailure(endpoint, err)
		}
		w.stats.framesWritten.Add(1)
	}
	return nil
}

// ioFailure logs an I/O error on an open channel and returns it as the
// worker's fatal error.
func (w *worker) ioFailure(endpoint *channel.Endpoint, err error) error {
	if errors.Is(err, channel.ErrPeerClosed) || netutil.IsExpectedCloseError(err) {
		w.logger.Error("peer disconnected", "channel", endpoint.Name(), "error", err)
	} else {
		w.logger.Error("channel I/O failed", "channel", endpoint.Name(), "error", err)
	}
	return fmt.Errorf("bridge: %w", err)
}
