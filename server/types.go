package server

import (
	"time"

	"github.com/momentics/hioload-tcp/pool"
)

// Config keys published through the control plane.
const (
	ConfigListenAddr      = "listen_addr"
	ConfigIOBufferSize    = "io_buffer_size"
	ConfigReusePort       = "reuse_port"
	ConfigReadTimeout     = "read_timeout"
	ConfigShutdownTimeout = "shutdown_timeout"
)

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr      string        // TCP bind address, e.g. ":7777"
	IOBufferSize    int           // size of per-connection read buffers
	ReusePort       bool          // bind with SO_REUSEPORT
	ReadTimeout     time.Duration // per-read deadline, 0 disables; hot-reloadable
	ShutdownTimeout time.Duration // grace period for open connections on Run exit
}

// DefaultConfig returns sensible defaults: 1 KiB reads, no read deadline.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":7777",
		IOBufferSize:    pool.DefaultBufferSize,
		ReusePort:       false,
		ReadTimeout:     0,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c *Config) snapshot() map[string]any {
	return map[string]any{
		ConfigListenAddr:      c.ListenAddr,
		ConfigIOBufferSize:    c.IOBufferSize,
		ConfigReusePort:       c.ReusePort,
		ConfigReadTimeout:     c.ReadTimeout,
		ConfigShutdownTimeout: c.ShutdownTimeout,
	}
}
