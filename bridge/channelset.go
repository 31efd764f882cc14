// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/posebridge/channel"
)

// channelSet is the primary channel plus one secondary per tracker.
// Only the worker touches the endpoints' I/O methods.
type channelSet struct {
	primary     *channel.Endpoint
	secondaries []*channel.Endpoint
	logger      *slog.Logger
}

// newChannelSet creates every channel. If any creation fails, the
// channels created so far are disconnected and the creation error is
// returned; cleanup errors are only logged.
func newChannelSet(factory channel.Factory, config Config, count int, logger *slog.Logger) (*channelSet, error) {
	set := &channelSet{logger: logger}

	pipe, err := factory.Create(config.PrimaryName)
	if err != nil {
		return nil, fmt.Errorf("bridge: creating primary channel %s: %w", config.PrimaryName, err)
	}
	set.primary = channel.NewEndpoint(config.PrimaryName, pipe)

	set.secondaries = make([]*channel.Endpoint, 0, count)
	for index := range count {
		name := config.SecondaryName(index)
		pipe, err := factory.Create(name)
		if err != nil {
			if cleanupErr := set.disconnectAll(); cleanupErr != nil {
				logger.Debug("cleanup after failed channel creation", "error", cleanupErr)
			}
			return nil, fmt.Errorf("bridge: creating secondary channel %s: %w", name, err)
		}
		set.secondaries = append(set.secondaries, channel.NewEndpoint(name, pipe))
	}
	return set, nil
}

// endpoints returns the primary followed by the secondaries.
func (s *channelSet) endpoints() []*channel.Endpoint {
	all := make([]*channel.Endpoint, 0, 1+len(s.secondaries))
	all = append(all, s.primary)
	return append(all, s.secondaries...)
}

func (s *channelSet) allOpen() bool {
	if !s.primary.IsOpen() {
		return false
	}
	for _, endpoint := range s.secondaries {
		if !endpoint.IsOpen() {
			return false
		}
	}
	return true
}

// connectPending attempts to open every channel still waiting for a
// peer. onPrimaryOpen and onSecondaryOpen run once, on the attempt that
// opens the channel; an error from onSecondaryOpen is returned
// immediately.
func (s *channelSet) connectPending(onPrimaryOpen func(), onSecondaryOpen func(index int, endpoint *channel.Endpoint) error) error {
	if s.primary.TryOpen(s.logger) {
		onPrimaryOpen()
	}
	for index, endpoint := range s.secondaries {
		if !endpoint.TryOpen(s.logger) {
			continue
		}
		if err := onSecondaryOpen(index, endpoint); err != nil {
			return err
		}
	}
	return nil
}

// disconnectAll disconnects every endpoint, continuing past failures,
// and returns the joined errors for the caller to log.
func (s *channelSet) disconnectAll() error {
	var errs []error
	if s.primary != nil {
		errs = append(errs, s.primary.Disconnect())
	}
	for _, endpoint := range s.secondaries {
		errs = append(errs, endpoint.Disconnect())
	}
	return errors.Join(errs...)
}

func (s *channelSet) status() []ChannelStatus {
	endpoints := s.endpoints()
	statuses := make([]ChannelStatus, len(endpoints))
	for i, endpoint := range endpoints {
		statuses[i] = ChannelStatus{Name: endpoint.Name(), State: endpoint.State().String()}
	}
	return statuses
}
