// File: api/handler.go
// Package api defines the connection handler contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"context"
	"net"
)

// ConnHandler serves one accepted connection until the peer closes or an
// error ends the exchange. The caller owns conn and closes it afterwards.
// A nil return means the peer closed cleanly.
type ConnHandler interface {
	ServeConn(ctx context.Context, conn net.Conn) error
}

// ConnHandlerFunc adapts a plain function to ConnHandler.
type ConnHandlerFunc func(ctx context.Context, conn net.Conn) error

// ServeConn calls f(ctx, conn).
func (f ConnHandlerFunc) ServeConn(ctx context.Context, conn net.Conn) error {
	return f(ctx, conn)
}
