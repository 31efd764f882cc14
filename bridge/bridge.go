// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/posebridge/channel"
	"github.com/bureau-foundation/posebridge/lib/clock"
	"github.com/bureau-foundation/posebridge/lib/pose"
	"github.com/bureau-foundation/posebridge/tracker"
)

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("bridge: already started")

	// ErrSharedTrackersUnsupported is returned by AddSharedTracker and
	// RemoveSharedTracker.
	ErrSharedTrackersUnsupported = errors.New("bridge: shared trackers are not supported")
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithClock sets the clock used for the idle wait. The default is the
// real clock.
func WithClock(timeSource clock.Clock) Option {
	return func(b *Bridge) { b.clock = timeSource }
}

// Bridge moves poses between the engine's trackers and the VR runtime.
// DataRead and DataWrite may be called from any goroutine concurrently
// with the worker; the other methods are safe for concurrent use.
type Bridge struct {
	id       uuid.UUID
	config   Config
	hmd      tracker.Tracker
	trackers []tracker.Tracker
	factory  channel.Factory
	clock    clock.Clock
	logger   *slog.Logger

	mailbox pose.Mailbox
	mirrors []mirror
	stats   counters

	mu        sync.Mutex
	started   bool
	startedAt time.Time
	channels  *channelSet
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// New returns a stopped bridge for the head tracker hmd and one
// secondary channel per entry in trackers.
func New(config Config, hmd tracker.Tracker, trackers []tracker.Tracker, factory channel.Factory, options ...Option) *Bridge {
	b := &Bridge{
		id:       uuid.New(),
		config:   config.withDefaults(),
		hmd:      hmd,
		trackers: trackers,
		factory:  factory,
		mirrors:  make([]mirror, len(trackers)),
		done:     make(chan struct{}),
	}
	for i := range b.mirrors {
		b.mirrors[i].sendData.Store(true)
	}
	for _, option := range options {
		option(b)
	}
	if b.clock == nil {
		b.clock = clock.Real()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With("bridge_id", b.id.String())
	return b
}

// ID returns the bridge instance identifier attached to its log lines.
func (b *Bridge) ID() uuid.UUID { return b.id }

// Start creates every channel and starts the worker goroutine. A
// channel creation failure is returned after the channels already
// created have been disconnected. The worker runs until Stop, ctx
// cancellation, or a fatal I/O error.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return ErrAlreadyStarted
	}
	b.started = true

	channels, err := newChannelSet(b.factory, b.config, len(b.trackers), b.logger)
	if err != nil {
		b.logger.Error("bridge startup failed", "error", err)
		b.err = err
		close(b.done)
		return err
	}
	b.channels = channels
	b.startedAt = b.clock.Now()

	ctx, b.cancel = context.WithCancel(ctx)
	w := newWorker(b.config, channels, b.hmd, &b.mailbox, b.mirrors, &b.stats, b.clock, b.logger)

	go func() {
		err := w.run(ctx)
		if cleanupErr := channels.disconnectAll(); cleanupErr != nil {
			b.logger.Debug("disconnecting channels", "error", cleanupErr)
		}
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
		if err != nil {
			b.logger.Error("bridge stopped", "error", err)
		} else {
			b.logger.Info("bridge stopped")
		}
		close(b.done)
	}()

	b.logger.Info("bridge started",
		"primary", b.config.PrimaryName,
		"trackers", len(b.trackers),
	)
	return nil
}

// Stop cancels the worker and waits for it to disconnect its channels.
// It is a no-op on a bridge that was never started.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	started := b.started
	b.mu.Unlock()
	if !started {
		return
	}
	if cancel != nil {
		cancel()
	}
	<-b.done
}

// Done is closed when the worker has exited.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Err returns the error that ended the worker, or nil after a clean
// Stop or while still running.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// DataRead applies the newest head pose to the head tracker, if one
// arrived since the previous call.
func (b *Bridge) DataRead() {
	sample, ok := b.mailbox.Take()
	if !ok {
		return
	}
	b.hmd.SetPosition(sample.Position)
	b.hmd.SetRotation(sample.Rotation)
	b.hmd.DataTick()
}

// DataWrite copies every body tracker's pose and send gate into the
// worker's mirrors.
func (b *Bridge) DataWrite() {
	for i, t := range b.trackers {
		b.mirrors[i].pose.Store(pose.Sample{Position: t.Position(), Rotation: t.Rotation()})
		b.mirrors[i].sendData.Store(t.Status().SendData())
	}
}

// AddSharedTracker is not supported.
func (b *Bridge) AddSharedTracker(tracker.Tracker) error {
	return ErrSharedTrackersUnsupported
}

// RemoveSharedTracker is not supported.
func (b *Bridge) RemoveSharedTracker(tracker.Tracker) error {
	return ErrSharedTrackersUnsupported
}

// Snapshot returns the bridge's current status.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	snapshot := Snapshot{
		ID:           b.id.String(),
		StartedAt:    b.startedAt,
		TrackerCount: len(b.trackers),
		Counters:     b.stats.snapshot(),
		HeadPending:  b.mailbox.Pending(),
	}
	if b.channels != nil {
		snapshot.Channels = b.channels.status()
	}
	if b.err != nil {
		snapshot.Error = b.err.Error()
	}
	running := b.started && b.err == nil
	b.mu.Unlock()

	select {
	case <-b.done:
		running = false
	default:
	}
	snapshot.Running = running
	return snapshot
}
