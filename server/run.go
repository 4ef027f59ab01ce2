// File: server/run.go
// Package server implements the accept loop, per-connection tasks and
// graceful shutdown.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/momentics/hioload-tcp/api"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Serve accepts connections and runs handler on each in its own goroutine.
// It returns nil once the listener is closed by Shutdown.
func (s *Server) Serve(handler api.ConnHandler) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, api.ErrListenerClosed) {
				return nil
			}
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else if backoff *= 2; backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.logger.Printf("[server] accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.conns.Add(1)
		s.mu.Unlock()

		s.control.AddMetric("conn.accepted", 1)
		go s.handleConn(handler, conn)
	}
}

// ListenAndServe binds and serves until Shutdown.
func (s *Server) ListenAndServe(ctx context.Context, handler api.ConnHandler) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(handler)
}

// Run binds, serves until ctx is done, then shuts down within ShutdownTimeout.
func (s *Server) Run(ctx context.Context, handler api.ConnHandler) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(handler) }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Println("[server] shutdown signal received, closing listener...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := s.Shutdown(shutdownCtx)
	<-serveErr
	return err
}

// handleConn is the connection task. Handler errors stay local to it.
func (s *Server) handleConn(handler api.ConnHandler, conn net.Conn) {
	defer s.conns.Done()
	peer := conn.RemoteAddr()
	s.active.Add(1)
	s.control.AddMetric("conn.active", 1)

	stop := context.AfterFunc(s.ctx, func() { conn.Close() })
	defer func() {
		stop()
		conn.Close()
		s.active.Add(-1)
		s.control.AddMetric("conn.active", -1)
		if r := recover(); r != nil {
			s.control.AddMetric("conn.errors", 1)
			s.logger.Printf("[server] panic in connection %v: %v", peer, r)
		}
	}()

	err := handler.ServeConn(s.ctx, &deadlineConn{Conn: conn, timeout: s.currentReadTimeout})
	if err != nil {
		s.control.AddMetric("conn.errors", 1)
		s.logger.Printf("[server] connection %v closed: %v", peer, err)
	}
}

func (s *Server) currentReadTimeout() time.Duration {
	return time.Duration(s.readTimeout.Load())
}

// Shutdown stops accepting and waits for connection tasks to finish. When ctx
// expires first, the remaining connections are closed and ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.closing = true
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}

	idle := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.logger.Printf("[server] forcing %d connection(s) closed", s.active.Load())
		s.cancel()
		<-idle
		return ctx.Err()
	}
}
