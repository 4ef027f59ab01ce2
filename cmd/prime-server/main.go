// File: cmd/prime-server/main.go
// Package main
// Prime-check server: answers {"method":"isPrime","number":N} requests.
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

	"github.com/momentics/hioload-tcp/protocol/prime"
	"github.com/momentics/hioload-tcp/server"
	"github.com/momentics/hioload-tcp/service/primecheck"
)

func main() {
	cfg := server.DefaultConfig()
	flag.StringVar(&cfg.ListenAddr, "addr", ":8080", "TCP listen address")
	flag.IntVar(&cfg.IOBufferSize, "buffer", cfg.IOBufferSize, "read buffer size in bytes")
	flag.BoolVar(&cfg.ReusePort, "reuseport", cfg.ReusePort, "bind with SO_REUSEPORT")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-read deadline (0 disables)")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for open connections")
	framingFlag := flag.String("framing", "chunk", "request framing: chunk (one JSON document per read) or line")
	maxFrame := flag.Int("max-frame", prime.DefaultMaxFrameSize, "longest buffered line in line framing")
	flag.Parse()

	framing, err := prime.ParseFraming(*framingFlag)
	if err != nil {
		log.Fatalf("invalid -framing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	handler := primecheck.NewHandler(
		primecheck.WithBytePool(srv.GetBufferPool()),
		primecheck.WithBufferSize(cfg.IOBufferSize),
		primecheck.WithFraming(framing),
		primecheck.WithMaxFrameSize(*maxFrame),
		primecheck.WithControl(srv.GetControl()),
	)
	srv.GetControl().SetMetric("prime.framing", framing.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, handler); err != nil {
		log.Fatalf("prime server: %v", err)
	}
	log.Println("Server shutdown complete.")
}
