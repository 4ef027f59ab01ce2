// File: server/server.go
// Package server provides the TCP server facade shared by the echo and
// prime-check services: listener, per-connection tasks, read buffer pool
// and control plane.
//
// The read timeout is hot-reloadable: embedders change it at runtime through
// GetControl().SetConfig with the read_timeout key. The bundled binaries set
// it once from flags and expose no reload trigger.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-tcp/adapters"
	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/pool"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

var (
	ErrAlreadyRunning = errors.New("server already running")
	ErrNotListening   = errors.New("server is not listening")
)

// Server is the unified facade encapsulating listener, buffer pool and control.
type Server struct {
	cfg     *Config
	control *adapters.ControlAdapter
	pool    *pool.BytePool
	logger  *log.Logger

	mu       sync.Mutex
	listener *tcp.Listener
	closing  bool

	// ctx is handed to every connection task; cancelling it closes their sockets.
	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup

	readTimeout atomic.Int64
	active      atomic.Int64
}

// NewServer constructs a Server facade with the given Config and options.
func NewServer(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.ListenAddr == "" {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "empty listen address")
	}
	if c.IOBufferSize <= 0 {
		c.IOBufferSize = pool.DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		cfg:     &c,
		control: adapters.NewControlAdapter(),
		logger:  log.Default(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.cfg.ReadTimeout < 0 {
		cancel()
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative read timeout").
			WithContext(ConfigReadTimeout, srv.cfg.ReadTimeout)
	}
	srv.pool = pool.NewBytePool(srv.cfg.IOBufferSize)
	srv.readTimeout.Store(int64(srv.cfg.ReadTimeout))

	srv.control.OnReload(srv.reload)
	if err := srv.control.SetConfig(srv.cfg.snapshot()); err != nil {
		cancel()
		return nil, err
	}
	srv.control.RegisterDebugProbe("server.active_connections", func() any {
		return srv.active.Load()
	})
	srv.control.RegisterDebugProbe("pool.stats", func() any {
		return srv.pool.Stats()
	})
	return srv, nil
}

// reload applies hot-reloadable settings from the control plane.
func (s *Server) reload() {
	v, ok := s.control.GetConfig()[ConfigReadTimeout]
	if !ok {
		return
	}
	d, err := toDuration(v)
	if err != nil || d < 0 {
		s.logger.Printf("[server] ignoring %s=%v: %v", ConfigReadTimeout, v, err)
		return
	}
	if old := time.Duration(s.readTimeout.Swap(int64(d))); old != d {
		s.logger.Printf("[server] %s changed from %v to %v", ConfigReadTimeout, old, d)
	}
}

func toDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		return time.ParseDuration(x)
	case int:
		return time.Duration(x) * time.Second, nil
	case int64:
		return time.Duration(x) * time.Second, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// GetControl returns the control plane: config, metrics and debug probes.
func (s *Server) GetControl() api.Control {
	return s.control
}

// GetBufferPool returns the pool connection handlers should read into.
func (s *Server) GetBufferPool() api.BytePool {
	return s.pool
}

// Config returns a copy of the effective configuration.
func (s *Server) Config() Config {
	return *s.cfg
}

// GetActiveConnections returns the current number of open connection tasks.
func (s *Server) GetActiveConnections() int64 {
	return s.active.Load()
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the configured address. Bind failure is the only error that
// should stop the process.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return ErrAlreadyRunning
	}
	ln, err := tcp.Listen(ctx, tcp.ListenerConfig{
		Addr:      s.cfg.ListenAddr,
		ReusePort: s.cfg.ReusePort,
	})
	if err != nil {
		return err
	}
	s.listener = ln
	s.control.SetMetric("server.addr", ln.Addr().String())
	s.logger.Printf("[server] listening on %s", ln.Addr())
	return nil
}
