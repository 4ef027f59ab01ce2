// File: service/primecheck/handler.go
// Package primecheck implements the prime-check service on top of protocol/prime.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per connection: read a frame, decode it, answer, repeat. A decode failure
// sends a plain-text diagnostic and ends the connection. An unknown method
// ends the connection without sending anything.

package primecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/pool"
	"github.com/momentics/hioload-tcp/protocol/prime"
)

// Handler answers isPrime requests. It keeps no per-connection state of its
// own, so one Handler serves all connections.
type Handler struct {
	pool     api.BytePool
	bufSize  int
	framing  prime.Framing
	maxFrame int
	control  api.Control
	logger   *log.Logger
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

// WithFraming selects chunk or line framing.
func WithFraming(f prime.Framing) Option {
	return func(h *Handler) { h.framing = f }
}

// WithMaxFrameSize bounds a buffered line in line framing.
func WithMaxFrameSize(n int) Option {
	return func(h *Handler) { h.maxFrame = n }
}

// WithControl reports request counters to ctrl.
func WithControl(ctrl api.Control) Option {
	return func(h *Handler) { h.control = ctrl }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler builds a prime-check handler. Chunk framing is the default.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		bufSize:  pool.DefaultBufferSize,
		framing:  prime.FramingChunk,
		maxFrame: prime.DefaultMaxFrameSize,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.pool == nil {
		h.pool = pool.NewBytePool(h.bufSize)
	}
	return h
}

// Framing reports the configured framing.
func (h *Handler) Framing() prime.Framing { return h.framing }

// ServeConn runs the request loop for conn. It returns nil when the peer
// closes cleanly, an error matching api.ErrDecode or api.ErrUnknownMethod
// for a rejected request, and a transport error otherwise.
func (h *Handler) ServeConn(ctx context.Context, conn net.Conn) error {
	buf := h.pool.Acquire(h.bufSize)
	defer h.pool.Release(buf)

	framer := prime.NewFramer(h.framing, h.maxFrame)
	for {
		n, rerr := conn.Read(buf)
		if n > 0 {
			// Frames completed before an oversized line are answered first.
			perr := framer.Push(buf[:n])
			for {
				frame, ok := framer.Pop()
				if !ok {
					break
				}
				if err := h.serveFrame(conn, framer, frame); err != nil {
					return err
				}
			}
			if perr != nil {
				return h.reject(conn, perr)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				if frame, ok := framer.Drain(); ok {
					return h.serveFrame(conn, framer, frame)
				}
				return nil
			}
			if ctx.Err() != nil {
				return fmt.Errorf("prime read: %w", ctx.Err())
			}
			h.logger.Printf("[prime] socket read failed for %v: %v", conn.RemoteAddr(), rerr)
			return api.WrapError(api.ErrCodeTransport, "prime read", rerr)
		}
	}
}

func (h *Handler) serveFrame(conn net.Conn, framer prime.Framer, frame []byte) error {
	req, err := prime.DecodeRequest(frame)
	if err != nil {
		var unknown *prime.UnknownMethodError
		if errors.As(err, &unknown) {
			h.count("prime.protocol_errors")
			h.logger.Printf("[prime] closing %v: %v", conn.RemoteAddr(), err)
			return api.WrapError(api.ErrCodeProtocol, "prime request rejected", err).
				WithContext("method", unknown.Method)
		}
		return h.reject(conn, err)
	}

	h.count("prime.requests")
	out, err := prime.EncodeResponse(prime.Evaluate(req))
	if err != nil {
		return api.WrapError(api.ErrCodeInternal, "prime encode", err)
	}
	if _, err := conn.Write(framer.Terminate(out)); err != nil {
		h.logger.Printf("[prime] socket write failed for %v: %v", conn.RemoteAddr(), err)
		return api.WrapError(api.ErrCodeTransport, "prime write", err)
	}
	return nil
}

// reject reports a decode failure to the peer as plain text.
func (h *Handler) reject(conn net.Conn, cause error) error {
	h.count("prime.decode_errors")
	h.logger.Printf("[prime] JSON decode failed for %v: %v", conn.RemoteAddr(), cause)
	if _, err := io.WriteString(conn, Diagnostic(cause)); err != nil {
		h.logger.Printf("[prime] diagnostic write failed for %v: %v", conn.RemoteAddr(), err)
	}
	return api.WrapError(api.ErrCodeDecode, "prime request rejected", cause)
}

// Diagnostic renders the text sent to a peer whose request failed to decode.
func Diagnostic(cause error) string {
	var de *prime.DecodeError
	if errors.As(cause, &de) {
		return "malformed request: " + de.Reason + "\n"
	}
	return "malformed request\n"
}

func (h *Handler) count(key string) {
	if h.control != nil {
		h.control.AddMetric(key, 1)
	}
}
