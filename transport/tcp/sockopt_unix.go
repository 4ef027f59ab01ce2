//go:build linux || darwin || freebsd

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ReusePortSupported reports whether SO_REUSEPORT can be requested here.
const ReusePortSupported = true

func applySocketOptions(fd uintptr, cfg ListenerConfig) error {
	if cfg.ReusePort {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			return fmt.Errorf("setsockopt SO_REUSEPORT: %w", err)
		}
	}
	return nil
}
