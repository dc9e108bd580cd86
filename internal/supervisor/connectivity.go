package supervisor

import (
	"context"
	"net"
	"time"
)

// Checker reports whether the remote storage is reachable.
type Checker interface {
	Connected(ctx context.Context) bool
}

// TCPChecker considers the network up when a TCP connection to Address can
// be opened within Timeout.
type TCPChecker struct {
	Address string
	Timeout time.Duration
}

// Connected dials Address and closes the connection immediately.
func (c *TCPChecker) Connected(ctx context.Context) bool {
	d := net.Dialer{Timeout: c.Timeout}

	conn, err := d.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return false
	}

	conn.Close()

	return true
}
