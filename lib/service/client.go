// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/posebridge/lib/codec"
)

const (
	dialTimeout         = 2 * time.Second
	responseReadTimeout = readTimeout + writeTimeout
	maxResponseSize     = 1024 * 1024
)

// ActionError is returned by Call when the server replies ok=false.
type ActionError struct {
	Action  string
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %q failed: %s", e.Action, e.Message)
}

// Call sends {action: action} to the socket and decodes the response
// data into result. A nil result discards the data.
func Call(ctx context.Context, socketPath, action string, result any) error {
	response, err := CallRaw(ctx, socketPath, action)
	if err != nil {
		return err
	}
	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}
	return nil
}

// CallRaw is Call without decoding the data. ok=false responses are
// returned as *ActionError.
func CallRaw(ctx context.Context, socketPath, action string) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("calling %q on %s: %w", action, socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if err := codec.NewEncoder(conn).Encode(map[string]any{"action": action}); err != nil {
		return nil, fmt.Errorf("calling %q on %s: writing request: %w", action, socketPath, err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	if _, ok := ctx.Deadline(); !ok {
		conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	}
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("calling %q on %s: reading response: %w", action, socketPath, err)
	}
	if !response.OK {
		return nil, &ActionError{Action: action, Message: response.Error}
	}
	return &response, nil
}
