// File: client/client.go
// Package client provides a blocking client for the prime-check service.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The client speaks both framings: requests are newline-terminated under
// FramingLine and bare under FramingChunk. Responses are read with a JSON
// stream decoder, which needs no delimiter. Under FramingChunk the client
// must wait for each response before sending the next request.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol/prime"
)

// ErrClientClosed is returned by calls after Close.
var ErrClientClosed = errors.New("client is closed")

// ClientConfig holds all configurable parameters for the prime-check client.
type ClientConfig struct {
	Addr         string        // host:port of the prime-check server
	Framing      prime.Framing // must match the server
	ReadTimeout  time.Duration // response deadline, 0 disables
	WriteTimeout time.Duration // request deadline, 0 disables
}

// PrimeClient issues requests over a single connection. Calls are serialized.
type PrimeClient struct {
	cfg    ClientConfig
	conn   net.Conn
	dec    *json.Decoder
	mu     sync.Mutex
	closed bool
}

// Dial connects to cfg.Addr.
func Dial(ctx context.Context, cfg ClientConfig) (*PrimeClient, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	return NewPrimeClient(conn, cfg), nil
}

// NewPrimeClient wraps an established connection.
func NewPrimeClient(conn net.Conn, cfg ClientConfig) *PrimeClient {
	return &PrimeClient{cfg: cfg, conn: conn, dec: json.NewDecoder(conn)}
}

// IsPrime asks the server whether n is prime.
func (c *PrimeClient) IsPrime(n uint64) (bool, error) {
	resp, err := c.Call(prime.Request{Method: prime.MethodIsPrime, Number: n})
	if err != nil {
		return false, err
	}
	return resp.Prime, nil
}

// Call sends req verbatim and waits for one response. A server that rejects
// the request closes the connection; that surfaces as an api.ErrCodeTransport
// error wrapping io.EOF or a reset.
func (c *PrimeClient) Call(req prime.Request) (prime.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return prime.Response{}, ErrClientClosed
	}

	out, err := json.Marshal(req)
	if err != nil {
		return prime.Response{}, err
	}
	if c.cfg.Framing == prime.FramingLine {
		out = append(out, '\n')
	}
	if err := c.setDeadline(c.conn.SetWriteDeadline, c.cfg.WriteTimeout); err != nil {
		return prime.Response{}, err
	}
	if _, err := c.conn.Write(out); err != nil {
		return prime.Response{}, api.WrapError(api.ErrCodeTransport, "prime client write", err)
	}

	if err := c.setDeadline(c.conn.SetReadDeadline, c.cfg.ReadTimeout); err != nil {
		return prime.Response{}, err
	}
	var resp prime.Response
	if err := c.dec.Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return prime.Response{}, api.WrapError(api.ErrCodeTransport, "server closed connection", err).
				WithContext("method", req.Method)
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return prime.Response{}, api.WrapError(api.ErrCodeTransport, "prime client read", err)
		}
		return prime.Response{}, api.WrapError(api.ErrCodeDecode, "invalid response", err)
	}
	return resp, nil
}

func (c *PrimeClient) setDeadline(set func(time.Time) error, d time.Duration) error {
	var t time.Time
	if d > 0 {
		t = time.Now().Add(d)
	}
	return set(t)
}

// Close shuts the connection. It is idempotent.
func (c *PrimeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
