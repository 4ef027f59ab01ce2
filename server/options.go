// File: server/options.go
// Package server defines functional options for the Server facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log"
	"time"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReusePort binds the listener with SO_REUSEPORT.
func WithReusePort(on bool) ServerOption {
	return func(s *Server) {
		s.cfg.ReusePort = on
	}
}

// WithReadTimeout sets the initial per-read deadline.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.cfg.ReadTimeout = d
	}
}
