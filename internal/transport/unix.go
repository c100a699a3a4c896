package transport

import (
	"context"
	"net"
	"time"
)

// UnixTransport implements the Transport interface using a UNIX domain
// socket, the default way local clients reach the manager daemon.
type UnixTransport struct {
	connTransport
	dialer net.Dialer
}

// NewUnixTransport creates a transport for the socket at path.
func NewUnixTransport(path string, timeout time.Duration) *UnixTransport {
	return &UnixTransport{
		connTransport: connTransport{address: path},
		dialer:        net.Dialer{Timeout: timeout},
	}
}

// Connect dials the socket
func (t *UnixTransport) Connect(ctx context.Context) error {
	conn, err := t.dialer.DialContext(ctx, "unix", t.address)
	if err != nil {
		return connectError(t.address, err)
	}

	t.conn = conn
	return nil
}
