// Package client runs request/response exchanges with the manager daemon.
//
// A Session pairs one transport with one protocol connection and drives
// the read loop: it writes the serialized request, feeds every chunk read
// from the transport to the connection and returns the Response once the
// reply is complete. GMP wraps a Session with typed operations.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/logging"
	"github.com/anstrom/gvmclient/internal/metrics"
	"github.com/anstrom/gvmclient/internal/protocol"
	"github.com/anstrom/gvmclient/internal/transport"
)

const defaultReadBufferSize = 32 * 1024

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *Session) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTimeout bounds each exchange. A context deadline that expires
// earlier wins. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithReadBufferSize sets the size of each transport read.
func WithReadBufferSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.readBufferSize = n
		}
	}
}

// WithMaxResponseSize limits the size of a single reply.
func WithMaxResponseSize(n int64) Option {
	return func(s *Session) {
		s.maxResponseSize = n
	}
}

// Session runs exchanges over one transport. Calls to Do are serialized;
// the protocol allows a single outstanding request.
type Session struct {
	mu        sync.Mutex
	transport transport.Transport
	conn      *protocol.Connection

	base            *logging.Logger
	logger          *logging.Logger
	metrics         metrics.Recorder
	timeout         time.Duration
	readBufferSize  int
	maxResponseSize int64
}

// NewSession creates a session over a connected transport.
func NewSession(t transport.Transport, opts ...Option) *Session {
	s := &Session{
		transport:      t,
		logger:         logging.Default(),
		metrics:        metrics.Noop{},
		readBufferSize: defaultReadBufferSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.base = s.logger
	s.logger = s.logger.WithComponent("session").WithAddress(t.Address())
	s.conn = protocol.NewConnection(
		protocol.WithLogger(s.logger.Slog()),
		protocol.WithMaxResponseSize(s.maxResponseSize),
	)
	return s
}

// Open creates the transport described by cfg, connects it and returns a
// session using the connection settings of cfg. Options given here take
// precedence over cfg.
func Open(ctx context.Context, cfg config.ConnectionConfig, opts ...Option) (*Session, error) {
	t, err := transport.New(cfg)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithTimeout(cfg.Timeout),
		WithReadBufferSize(cfg.ReadBufferSize),
		WithMaxResponseSize(cfg.MaxResponseSize),
	}
	s := NewSession(t, append(base, opts...)...)

	if err := t.Connect(ctx); err != nil {
		s.base.ErrorTransport("failed to connect", t.Address(), err, "transport", cfg.Transport)
		return nil, err
	}
	s.base.InfoTransport("connected", t.Address(), "transport", cfg.Transport)
	return s, nil
}

// Address returns the transport address.
func (s *Session) Address() string {
	return s.transport.Address()
}

// State returns the protocol state of the underlying connection.
func (s *Session) State() protocol.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.State()
}

// Do sends req and waits for the complete reply. It does not check the
// reply status; see Response.RaiseForStatus.
//
// On any failure, including cancellation of ctx, the protocol connection
// is reset so the next Do starts clean. The transport stays open; after a
// failed exchange it may still carry the rest of an abandoned reply, so
// callers usually close the session.
func (s *Session) Do(ctx context.Context, req protocol.Request) (*protocol.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	command := protocol.CommandName(req)
	start := time.Now()

	s.metrics.ExchangeStarted()
	defer s.metrics.ExchangeFinished()

	resp, err := s.exchange(ctx, req)
	duration := time.Since(start)

	if err != nil {
		s.conn.Close()
		var parseErr *protocol.ParseError
		if errors.As(err, &parseErr) {
			s.metrics.IncrementParseErrors()
		}
		s.metrics.ObserveCommand(command, 0, duration)
		s.logger.ErrorCommand("exchange failed", command, err, "duration", duration)
		return nil, err
	}

	status, _ := resp.StatusCode()
	s.metrics.ObserveCommand(command, status, duration)
	s.logger.WithCommand(command).Debug("exchange completed",
		"status", status,
		"bytes", len(resp.Data()),
		"duration", duration)
	return resp, nil
}

func (s *Session) exchange(ctx context.Context, req protocol.Request) (*protocol.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.contextError("send", err)
	}

	data, err := s.conn.Send(req)
	if err != nil {
		return nil, err
	}

	stop, err := s.applyDeadline(ctx)
	if err != nil {
		return nil, err
	}
	defer stop()

	if err := s.writeAll(ctx, data); err != nil {
		return nil, err
	}

	buf := make([]byte, s.readBufferSize)
	for {
		n, readErr := s.transport.Read(buf)
		if n > 0 {
			s.metrics.AddBytesReceived(n)
			resp, err := s.conn.ReceiveData(buf[:n])
			if err != nil {
				return nil, err
			}
			if resp != nil {
				return resp, nil
			}
		}
		if readErr != nil {
			return nil, s.ioError(ctx, "read", readErr)
		}
	}
}

func (s *Session) writeAll(ctx context.Context, data []byte) error {
	for len(data) > 0 {
		n, err := s.transport.Write(data)
		s.metrics.AddBytesSent(n)
		if err != nil {
			return s.ioError(ctx, "write", err)
		}
		data = data[n:]
	}
	return nil
}

// applyDeadline maps the exchange timeout and ctx onto the transport
// deadline. Cancellation of ctx expires the deadline immediately so a
// blocked read or write returns.
func (s *Session) applyDeadline(ctx context.Context) (func(), error) {
	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	if err := s.transport.SetDeadline(deadline); err != nil {
		return nil, err
	}

	stopAfter := context.AfterFunc(ctx, func() {
		_ = s.transport.SetDeadline(time.Now())
	})
	return func() {
		stopAfter()
		_ = s.transport.SetDeadline(time.Time{})
	}, nil
}

// ioError reports context errors in preference to the I/O error they
// caused.
func (s *Session) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return s.contextError(op, ctxErr)
	}
	return err
}

func (s *Session) contextError(op string, err error) error {
	code := gvmerrors.CodeCanceled
	if errors.Is(err, context.DeadlineExceeded) {
		code = gvmerrors.CodeTimeout
	}
	return gvmerrors.NewTransportError(code, op, s.transport.Address(), err)
}

// Close closes the transport. The session cannot be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.Close()
	if err := s.transport.Close(); err != nil {
		return err
	}
	s.logger.Debug("session closed")
	return nil
}
