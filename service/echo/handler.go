// File: service/echo/handler.go
// Package echo implements the byte echo service: every chunk read from a
// connection is written back unchanged until the peer closes.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/pool"
)

// Handler echoes bytes on one connection at a time; a single Handler may
// serve any number of connections concurrently.
type Handler struct {
	pool    api.BytePool
	bufSize int
	control api.Control
	logger  *log.Logger
}

var _ api.ConnHandler = (*Handler)(nil)

// Option customizes a Handler.
type Option func(*Handler)

// WithBytePool sets the pool read buffers are drawn from.
func WithBytePool(p api.BytePool) Option {
	return func(h *Handler) { h.pool = p }
}

// WithBufferSize sets the read chunk size.
func WithBufferSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.bufSize = n
		}
	}
}

// WithControl reports byte counters to ctrl.
func WithControl(ctrl api.Control) Option {
	return func(h *Handler) { h.control = ctrl }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler builds an echo handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		bufSize: pool.DefaultBufferSize,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.pool == nil {
		h.pool = pool.NewBytePool(h.bufSize)
	}
	return h
}

// ServeConn copies conn back to itself. It returns nil when the peer
// closes and the wrapped transport error otherwise.
func (h *Handler) ServeConn(ctx context.Context, conn net.Conn) error {
	buf := h.pool.Acquire(h.bufSize)
	defer h.pool.Release(buf)

	peer := conn.RemoteAddr()
	for {
		n, rerr := conn.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				h.logger.Printf("[echo] socket write failed for %v: %v", peer, werr)
				return api.WrapError(api.ErrCodeTransport, "echo write", werr)
			}
			if h.control != nil {
				h.control.AddMetric("echo.bytes", int64(n))
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return fmt.Errorf("echo read: %w", ctx.Err())
			}
			h.logger.Printf("[echo] socket read failed for %v: %v", peer, rerr)
			return api.WrapError(api.ErrCodeTransport, "echo read", rerr)
		}
	}
}
