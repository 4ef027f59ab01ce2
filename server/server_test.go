package server_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/server"
	"github.com/momentics/hioload-tcp/service/echo"
	"github.com/momentics/hioload-tcp/service/primecheck"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newServer(t *testing.T, opts ...server.ServerOption) *server.Server {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	opts = append([]server.ServerOption{server.WithLogger(quietLogger())}, opts...)
	srv, err := server.NewServer(cfg, opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Listen(context.Background()); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	return srv
}

func startServing(t *testing.T, srv *server.Server, h api.ConnHandler) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- srv.Serve(h) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})
}

func dial(t *testing.T, srv *server.Server) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func echoHandler(srv *server.Server) api.ConnHandler {
	return echo.NewHandler(
		echo.WithBytePool(srv.GetBufferPool()),
		echo.WithBufferSize(srv.Config().IOBufferSize),
		echo.WithControl(srv.GetControl()),
		echo.WithLogger(quietLogger()),
	)
}

func primeHandler(srv *server.Server) api.ConnHandler {
	return primecheck.NewHandler(
		primecheck.WithBytePool(srv.GetBufferPool()),
		primecheck.WithControl(srv.GetControl()),
		primecheck.WithLogger(quietLogger()),
	)
}

func TestServerEcho(t *testing.T) {
	srv := newServer(t)
	startServing(t, srv, echoHandler(srv))

	c := dial(t, srv)
	payload := make([]byte, 5000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	go c.Write(payload)

	got := make([]byte, len(payload))
	if _, err := io.ReadFull(c, got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	for i := range got {
		if got[i] != payload[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], payload[i])
		}
	}
	c.Close()

	ctrl := srv.GetControl()
	eventually(t, "connection task exit", func() bool { return srv.GetActiveConnections() == 0 })
	stats := ctrl.Stats()
	if stats["conn.accepted"] != int64(1) {
		t.Errorf("conn.accepted = %v", stats["conn.accepted"])
	}
	if stats["server.addr"] != srv.Addr().String() {
		t.Errorf("server.addr = %v", stats["server.addr"])
	}
	if _, ok := stats["debug.pool.stats"]; !ok {
		t.Error("pool probe missing")
	}
}

func TestServerPrimeConcurrentClients(t *testing.T) {
	srv := newServer(t)
	startServing(t, srv, primeHandler(srv))

	const clients = 8
	var wg sync.WaitGroup
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := net.Dial("tcp", srv.Addr().String())
			if err != nil {
				errs <- err
				return
			}
			defer c.Close()
			for j := 0; j < 3; j++ {
				n := 7
				want := `{"method":"isPrime","prime":true}`
				if (i+j)%2 == 1 {
					n, want = 1024, `{"method":"isPrime","prime":false}`
				}
				fmt.Fprintf(c, `{"method":"isPrime","number":%d}`, n)
				got := make([]byte, len(want))
				if _, err := io.ReadFull(c, got); err != nil {
					errs <- err
					return
				}
				if string(got) != want {
					errs <- fmt.Errorf("client %d: got %s want %s", i, got, want)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestServerFailureIsolation(t *testing.T) {
	srv := newServer(t)
	startServing(t, srv, primeHandler(srv))

	good := dial(t, srv)
	bad := dial(t, srv)

	io.WriteString(bad, `{"method":"isComposite","number":7}`)
	if rest, _ := io.ReadAll(bad); len(rest) != 0 {
		t.Fatalf("unknown method produced %q", rest)
	}

	io.WriteString(good, `{"method":"isPrime","number":2}`)
	want := `{"method":"isPrime","prime":true}`
	got := make([]byte, len(want))
	if _, err := io.ReadFull(good, got); err != nil {
		t.Fatalf("healthy connection broken: %v", err)
	}
	if string(got) != want {
		t.Fatalf("got %s", got)
	}

	eventually(t, "error counter", func() bool {
		return srv.GetControl().Stats()["conn.errors"] == int64(1)
	})
}

func TestServerRecoversFromHandlerPanic(t *testing.T) {
	srv := newServer(t)
	startServing(t, srv, api.ConnHandlerFunc(func(ctx context.Context, conn net.Conn) error {
		b := make([]byte, 1)
		if _, err := io.ReadFull(conn, b); err != nil {
			return err
		}
		if b[0] == 'p' {
			panic("handler failure")
		}
		_, err := io.WriteString(conn, "ok")
		return err
	}))

	bad := dial(t, srv)
	io.WriteString(bad, "p")
	if rest, _ := io.ReadAll(bad); len(rest) != 0 {
		t.Fatalf("panicking handler produced %q", rest)
	}

	good := dial(t, srv)
	io.WriteString(good, "g")
	got, err := io.ReadAll(good)
	if err != nil || string(got) != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}

	eventually(t, "error counter", func() bool {
		return srv.GetControl().Stats()["conn.errors"] == int64(1)
	})
	eventually(t, "connections released", func() bool { return srv.GetActiveConnections() == 0 })
}

func TestServerShutdownForcesIdleConnections(t *testing.T) {
	srv := newServer(t)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(echoHandler(srv)) }()

	c := dial(t, srv)
	eventually(t, "connection accepted", func() bool { return srv.GetActiveConnections() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Shutdown: got %v, want deadline exceeded", err)
	}
	if err := <-serveErr; err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if srv.GetActiveConnections() != 0 {
		t.Fatal("connection task still running after Shutdown")
	}

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected closed connection")
	}
}

func TestServerReadTimeoutHotReload(t *testing.T) {
	srv := newServer(t)
	startServing(t, srv, echoHandler(srv))

	if err := srv.GetControl().SetConfig(map[string]any{server.ConfigReadTimeout: "50ms"}); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	c := dial(t, srv)
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.Read(make([]byte, 1)); err == nil {
		t.Fatal("idle connection should be closed by the read deadline")
	} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
		t.Fatal("server did not close the idle connection")
	}
}

func TestServerRunStopsOnContext(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv, err := server.NewServer(cfg, server.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, echoHandler(srv)) }()

	eventually(t, "listener bound", func() bool { return srv.Addr() != nil })
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestServerMisuse(t *testing.T) {
	if _, err := server.NewServer(&server.Config{}); api.CodeOf(err) != api.ErrCodeInvalidArgument {
		t.Errorf("empty addr: got %v", err)
	}
	if _, err := server.NewServer(nil, server.WithReadTimeout(-time.Second)); api.CodeOf(err) != api.ErrCodeInvalidArgument {
		t.Errorf("negative timeout: got %v", err)
	}

	cfg := server.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv, err := server.NewServer(cfg, server.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Serve(echoHandler(srv)); !errors.Is(err, server.ErrNotListening) {
		t.Errorf("Serve before Listen: got %v", err)
	}
	if err := srv.Listen(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer srv.Shutdown(context.Background())
	if err := srv.Listen(context.Background()); !errors.Is(err, server.ErrAlreadyRunning) {
		t.Errorf("second Listen: got %v", err)
	}
	if got := srv.GetControl().GetConfig()[server.ConfigIOBufferSize]; got != 1024 {
		t.Errorf("io_buffer_size = %v", got)
	}
}
