// Package transport provides the byte-stream connections the manager
// protocol runs over: UNIX domain sockets, TLS over TCP and SSH sessions.
//
// A Transport moves bytes only. It knows nothing about XML or responses;
// framing is done by the protocol package on top of it.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// ErrNotConnected is the cause reported when I/O is attempted before Connect.
var ErrNotConnected = errors.New("not connected")

// Transport defines the interface for stream I/O with the manager daemon.
//
//go:generate mockgen -destination=mocks/mock_transport.go -package=mocks . Transport
type Transport interface {
	// Connect establishes the connection. It honours ctx cancellation
	// while dialing and handshaking.
	Connect(ctx context.Context) error

	// Write sends data to the peer.
	Write(p []byte) (int, error)

	// Read receives data from the peer.
	Read(p []byte) (int, error)

	// SetDeadline sets the read and write deadline. A zero value clears it.
	SetDeadline(t time.Time) error

	// Close closes the connection. Closing twice is not an error.
	Close() error

	// Address describes the remote endpoint for logs and errors.
	Address() string
}

// New creates the transport selected by cfg.Transport. The returned
// transport is not connected yet.
func New(cfg config.ConnectionConfig) (Transport, error) {
	switch cfg.Transport {
	case config.TransportUnix, "":
		return NewUnixTransport(cfg.SocketPath, cfg.Timeout), nil
	case config.TransportTLS:
		return NewTLSTransport(cfg.Address(), cfg.Host, cfg.TLS, cfg.Timeout)
	case config.TransportSSH:
		return NewSSHTransport(cfg.Address(), cfg.SSH, cfg.Timeout)
	default:
		return nil, gvmerrors.ErrConfigInvalid("connection.transport", cfg.Transport)
	}
}

// connTransport implements I/O over an established net.Conn. Transports
// that end up with a plain connection embed it.
type connTransport struct {
	address string
	conn    net.Conn
}

// Address returns the remote endpoint
func (t *connTransport) Address() string {
	return t.address
}

// Write sends data over the connection
func (t *connTransport) Write(p []byte) (int, error) {
	if t.conn == nil {
		return 0, gvmerrors.NewTransportError(gvmerrors.CodeTransport, "write", t.address, ErrNotConnected)
	}

	n, err := t.conn.Write(p)
	if err != nil {
		return n, classify("write", t.address, err)
	}
	return n, nil
}

// Read receives data from the connection
func (t *connTransport) Read(p []byte) (int, error) {
	if t.conn == nil {
		return 0, gvmerrors.NewTransportError(gvmerrors.CodeTransport, "read", t.address, ErrNotConnected)
	}

	n, err := t.conn.Read(p)
	if err != nil {
		return n, classify("read", t.address, err)
	}
	return n, nil
}

// SetDeadline sets the connection deadline
func (t *connTransport) SetDeadline(deadline time.Time) error {
	if t.conn == nil {
		return gvmerrors.NewTransportError(gvmerrors.CodeTransport, "set deadline", t.address, ErrNotConnected)
	}
	if err := t.conn.SetDeadline(deadline); err != nil {
		return classify("set deadline", t.address, err)
	}
	return nil
}

// Close closes the connection
func (t *connTransport) Close() error {
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return classify("close", t.address, err)
	}
	return nil
}

// classify maps a low-level I/O error to a TransportError code.
func classify(op, address string, err error) error {
	code := gvmerrors.CodeTransport

	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		code = gvmerrors.CodeTimeout
	case errors.Is(err, context.Canceled):
		code = gvmerrors.CodeCanceled
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		code = gvmerrors.CodeConnectionLost
	}

	return gvmerrors.NewTransportError(code, op, address, err)
}

// connectError maps a dial failure. Context errors keep their own code.
func connectError(address string, err error) error {
	code := gvmerrors.CodeConnectFailed
	switch {
	case errors.Is(err, context.Canceled):
		code = gvmerrors.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		code = gvmerrors.CodeTimeout
	}
	return gvmerrors.NewTransportError(code, "connect", address, err)
}
