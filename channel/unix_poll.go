// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux || darwin || freebsd

package channel

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/posebridge/lib/netutil"
)

// unixPipe is a listening Unix socket that accepts a single peer.
type unixPipe struct {
	path           string
	listener       *net.UnixListener
	connection     *net.UnixConn
	raw            syscall.RawConn
	connectTimeout time.Duration
	ioTimeout      time.Duration
	socketBuffer   int
	disconnected   bool
}

func listenUnix(path string, connectTimeout, ioTimeout time.Duration, socketBuffer int) (*unixPipe, error) {
	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, err
	}
	return &unixPipe{
		path:           path,
		listener:       listener,
		connectTimeout: connectTimeout,
		ioTimeout:      ioTimeout,
		socketBuffer:   socketBuffer,
	}, nil
}

func (p *unixPipe) TryConnect() (bool, error) {
	if p.connection != nil {
		return true, nil
	}
	if p.disconnected {
		return false, net.ErrClosed
	}
	if err := p.listener.SetDeadline(time.Now().Add(p.connectTimeout)); err != nil {
		return false, err
	}
	connection, err := p.listener.AcceptUnix()
	if err != nil {
		if netutil.IsTimeout(err) {
			return false, nil
		}
		return false, err
	}
	raw, err := connection.SyscallConn()
	if err != nil {
		connection.Close()
		return false, err
	}
	// Buffer sizing is advisory; the kernel may clamp it.
	_ = connection.SetReadBuffer(p.socketBuffer)
	_ = connection.SetWriteBuffer(p.socketBuffer)

	p.connection = connection
	p.raw = raw
	return true, nil
}

func (p *unixPipe) Available() (int, error) {
	if p.raw == nil {
		return 0, fmt.Errorf("not connected")
	}
	var count int
	var peekErr error
	controlErr := p.raw.Control(func(fd uintptr) {
		count, peekErr = unix.IoctlGetInt(int(fd), fionread)
		if peekErr != nil || count > 0 {
			return
		}
		// FIONREAD cannot tell an idle peer from a departed one. A
		// zero-length peek can: it returns 0 only at end of stream.
		var probe [1]byte
		n, _, err := unix.Recvfrom(int(fd), probe[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
		switch {
		case err == nil && n == 0:
			peekErr = fmt.Errorf("%w: %w", ErrPeerClosed, io.EOF)
		case err == nil:
			count = n
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR):
		default:
			peekErr = os.NewSyscallError("recvfrom", err)
		}
	})
	if controlErr != nil {
		return 0, controlErr
	}
	if peekErr != nil {
		return 0, peekErr
	}
	return count, nil
}

func (p *unixPipe) Read(b []byte) (int, error) {
	if p.connection == nil {
		return 0, fmt.Errorf("not connected")
	}
	if err := p.connection.SetReadDeadline(time.Now().Add(p.ioTimeout)); err != nil {
		return 0, err
	}
	return p.connection.Read(b)
}

func (p *unixPipe) Write(b []byte) (int, error) {
	if p.connection == nil {
		return 0, fmt.Errorf("not connected")
	}
	if err := p.connection.SetWriteDeadline(time.Now().Add(p.ioTimeout)); err != nil {
		return 0, err
	}
	return p.connection.Write(b)
}

func (p *unixPipe) Disconnect() error {
	if p.disconnected {
		return nil
	}
	p.disconnected = true

	var errs []error
	if p.connection != nil {
		if err := p.connection.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if err := p.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = append(errs, err)
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
