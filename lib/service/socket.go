// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/posebridge/lib/codec"
)

// ActionFunc handles one action. raw is the whole CBOR request. A nil
// result produces {ok: true}; otherwise the result is encoded into the
// response's data field.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// Response is the envelope for every reply.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

const (
	// readTimeout bounds the wait for a request after accept.
	readTimeout = 5 * time.Second

	// writeTimeout bounds writing the response.
	writeTimeout = 5 * time.Second

	// maxRequestSize caps a single request. Status requests are a few
	// bytes.
	maxRequestSize = 64 * 1024
)

// SocketServer serves registered actions on a Unix socket.
type SocketServer struct {
	socketPath string
	logger     *slog.Logger

	mu       sync.RWMutex
	handlers map[string]ActionFunc

	active sync.WaitGroup
	ready  chan struct{}
}

// NewSocketServer returns a server for socketPath. Register actions
// with Handle before or after Serve.
func NewSocketServer(socketPath string, logger *slog.Logger) *SocketServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketServer{
		socketPath: socketPath,
		logger:     logger,
		handlers:   make(map[string]ActionFunc),
		ready:      make(chan struct{}),
	}
}

// Handle registers handler for action. It panics on a duplicate.
func (s *SocketServer) Handle(action string, handler ActionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Ready is closed once the socket is listening.
func (s *SocketServer) Ready() <-chan struct{} { return s.ready }

// Serve listens on the socket and handles connections until ctx is
// cancelled, then waits for in-flight requests. A stale socket file is
// replaced; the socket file is removed on return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("status socket listening", "path", s.socketPath)
	close(s.ready)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		s.active.Add(1)
		go func() {
			defer s.active.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.active.Wait()
	return nil
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(readTimeout))

	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.writeResponse(conn, Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	var header struct {
		Action string `cbor:"action"`
	}
	if err := codec.Unmarshal(raw, &header); err != nil {
		s.writeResponse(conn, Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if header.Action == "" {
		s.writeResponse(conn, Response{Error: "missing required field: action"})
		return
	}

	s.mu.RLock()
	handler, exists := s.handlers[header.Action]
	s.mu.RUnlock()
	if !exists {
		s.writeResponse(conn, Response{Error: fmt.Sprintf("unknown action %q", header.Action)})
		return
	}

	result, err := handler(ctx, raw)
	if err != nil {
		s.logger.Debug("action failed", "action", header.Action, "error", err)
		s.writeResponse(conn, Response{Error: err.Error()})
		return
	}

	response := Response{OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeResponse(conn, Response{Error: fmt.Sprintf("internal: marshaling response: %v", err)})
			return
		}
		response.Data = data
	}
	s.writeResponse(conn, response)
}

// writeResponse failures are only logged; the connection is closing
// either way.
func (s *SocketServer) writeResponse(conn net.Conn, response Response) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}
