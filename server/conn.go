package server

import (
	"net"
	"time"
)

// deadlineConn arms the read deadline before every Read so a reloaded
// timeout takes effect on live connections. A zero timeout clears it.
type deadlineConn struct {
	net.Conn
	timeout func() time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	var deadline time.Time
	if d := c.timeout(); d > 0 {
		deadline = time.Now().Add(d)
	}
	if err := c.Conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
