// File: cmd/echo-server/main.go
// Package main
// TCP echo server: every byte received is written back to the sender.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/momentics/hioload-tcp/server"
	"github.com/momentics/hioload-tcp/service/echo"
)

func main() {
	cfg := server.DefaultConfig()
	flag.StringVar(&cfg.ListenAddr, "addr", ":7777", "TCP listen address")
	flag.IntVar(&cfg.IOBufferSize, "buffer", cfg.IOBufferSize, "read buffer size in bytes")
	flag.BoolVar(&cfg.ReusePort, "reuseport", cfg.ReusePort, "bind with SO_REUSEPORT")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-read deadline (0 disables)")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for open connections")
	flag.Parse()

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	handler := echo.NewHandler(
		echo.WithBytePool(srv.GetBufferPool()),
		echo.WithBufferSize(cfg.IOBufferSize),
		echo.WithControl(srv.GetControl()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, handler); err != nil {
		log.Fatalf("echo server: %v", err)
	}
	log.Println("Server shutdown complete.")
}
