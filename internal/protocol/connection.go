package protocol

import (
	"log/slog"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// Option configures a Connection.
type Option func(*Connection)

// WithLogger sets the logger used for state transitions. Transitions are
// logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxResponseSize limits the size of a single reply. A reply growing
// past the limit is treated like a parse error. Zero means no limit.
func WithMaxResponseSize(n int64) Option {
	return func(c *Connection) {
		if n > 0 {
			c.limits.maxResponseSize = n
		}
	}
}

// Connection is the protocol state machine of one request/response
// stream. It is not a socket: it never reads or writes, and it is not
// safe for concurrent use.
type Connection struct {
	state  state
	limits limits
	logger *slog.Logger
}

// NewConnection creates a connection in the Initial state.
func NewConnection(opts ...Option) *Connection {
	c := &Connection{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = &initialState{limits: c.limits}
	return c
}

// State returns the current protocol state.
func (c *Connection) State() State {
	return c.state.kind()
}

// Send serializes req for the transport. Only the Initial state accepts
// it; every other state returns an *InvalidStateError.
func (c *Connection) Send(req Request) ([]byte, error) {
	if req == nil {
		return nil, gvmerrors.NewRequiredArgument("send", "request")
	}
	data, next, err := c.state.send(req)
	c.transition(next)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("request sent", "command", CommandName(req), "bytes", len(data))
	return data, nil
}

// ReceiveData feeds one chunk read from the transport. It returns a
// non-nil Response on the chunk that completes the reply and nil before
// that. Bytes that follow the boundary in the same chunk stay part of the
// response data.
func (c *Connection) ReceiveData(p []byte) (*Response, error) {
	resp, next, err := c.state.receiveData(p)
	c.transition(next)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		c.logger.Debug("response received", "response", resp.Name(), "bytes", len(resp.Data()))
	}
	return resp, nil
}

// Close abandons any exchange in progress and returns to Initial. It is
// accepted in every state and does not touch the transport.
func (c *Connection) Close() {
	c.transition(&initialState{limits: c.limits})
}

func (c *Connection) transition(next state) {
	if next == nil || next == c.state {
		return
	}
	prev := c.state.kind()
	c.state = next
	if prev != next.kind() {
		c.logger.Debug("protocol state transition", "from", prev.String(), "to", next.kind().String())
	}
}
