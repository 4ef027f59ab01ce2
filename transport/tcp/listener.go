// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/momentics/hioload-tcp/api"
)

// ListenerConfig holds configuration for the TCP listener.
type ListenerConfig struct {
	Addr      string // TCP address to bind (e.g., ":7777")
	ReusePort bool   // set SO_REUSEPORT so several processes can share the port
}

// Listener wraps a bound TCP socket.
type Listener struct {
	ln net.Listener
}

// Listen binds the socket described by cfg.
func Listen(ctx context.Context, cfg ListenerConfig) (*Listener, error) {
	if cfg.Addr == "" {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "empty listen address")
	}
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var serr error
			err := c.Control(func(fd uintptr) {
				serr = applySocketOptions(fd, cfg)
			})
			if err != nil {
				return err
			}
			return serr
		},
	}
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", cfg.Addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Accept waits for the next connection. It returns api.ErrListenerClosed
// once Close has been called.
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, api.ErrListenerClosed
		}
		return nil, err
	}
	return conn, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting. Established connections are unaffected.
func (l *Listener) Close() error {
	return l.ln.Close()
}
