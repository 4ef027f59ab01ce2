//go:build !linux && !darwin && !freebsd

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import "github.com/momentics/hioload-tcp/api"

// ReusePortSupported reports whether SO_REUSEPORT can be requested here.
const ReusePortSupported = false

func applySocketOptions(fd uintptr, cfg ListenerConfig) error {
	if cfg.ReusePort {
		return api.NewError(api.ErrCodeNotSupported, "SO_REUSEPORT not available").
			WithContext("addr", cfg.Addr)
	}
	return nil
}
