package protocol

import (
	"bytes"
	"fmt"
)

// State identifies the protocol state of a Connection.
type State int

const (
	// StateInitial accepts Send only.
	StateInitial State = iota
	// StateAwaitingResponse holds a sent request until reply bytes arrive.
	StateAwaitingResponse
	// StateReceivingData accumulates reply bytes until the boundary.
	StateReceivingData
	// StateError is entered on a parse error; only Close leaves it.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateAwaitingResponse:
		return "AwaitingResponse"
	case StateReceivingData:
		return "ReceivingData"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	opSend        = "send"
	opReceiveData = "receive data"
)

// state is one node of the transition table. Each operation returns the
// successor state; a state never mutates its owner.
type state interface {
	kind() State
	send(req Request) ([]byte, state, error)
	receiveData(p []byte) (*Response, state, error)
}

// limits is the connection configuration every state carries along.
type limits struct {
	maxResponseSize int64
}

type initialState struct {
	limits limits
}

func (s *initialState) kind() State { return StateInitial }

func (s *initialState) send(req Request) ([]byte, state, error) {
	return req.Bytes(), &awaitingResponseState{limits: s.limits, request: req}, nil
}

func (s *initialState) receiveData([]byte) (*Response, state, error) {
	return nil, s, newInvalidStateError(StateInitial, opReceiveData, "no request has been sent")
}

type awaitingResponseState struct {
	limits  limits
	request Request
}

func (s *awaitingResponseState) kind() State { return StateAwaitingResponse }

func (s *awaitingResponseState) send(Request) ([]byte, state, error) {
	return nil, s, newInvalidStateError(StateAwaitingResponse, opSend, "a request is already awaiting its response")
}

// receiveData primes a fresh detector before the first byte is examined.
// An empty chunk carries no reply bytes and leaves the state alone.
func (s *awaitingResponseState) receiveData(p []byte) (*Response, state, error) {
	if len(p) == 0 {
		return nil, s, nil
	}
	next := &receivingDataState{
		limits:   s.limits,
		request:  s.request,
		detector: newBoundaryDetector(),
	}
	return next.receiveData(p)
}

type receivingDataState struct {
	limits   limits
	request  Request
	buffer   bytes.Buffer
	detector *boundaryDetector
}

func (s *receivingDataState) kind() State { return StateReceivingData }

func (s *receivingDataState) send(Request) ([]byte, state, error) {
	return nil, s, newInvalidStateError(StateReceivingData, opSend, "a response is being received")
}

func (s *receivingDataState) receiveData(p []byte) (*Response, state, error) {
	if len(p) == 0 {
		return nil, s, nil
	}
	s.buffer.Write(p)

	if err := s.detector.feed(p); err != nil {
		return nil, &errorState{reason: err}, err
	}
	if limit := s.limits.maxResponseSize; limit > 0 && int64(s.buffer.Len()) > limit && !s.detector.endReached() {
		err := &ParseError{
			Chunk:  p,
			Offset: int64(s.buffer.Len()),
			Cause:  fmt.Errorf("response exceeds %d bytes", limit),
		}
		return nil, &errorState{reason: err}, err
	}
	if !s.detector.endReached() {
		return nil, s, nil
	}
	return NewResponse(s.request, s.buffer.Bytes()), &initialState{limits: s.limits}, nil
}

type errorState struct {
	reason error
}

func (s *errorState) kind() State { return StateError }

func (s *errorState) send(Request) ([]byte, state, error) {
	return nil, s, s.invalid(opSend)
}

func (s *errorState) receiveData([]byte) (*Response, state, error) {
	return nil, s, s.invalid(opReceiveData)
}

func (s *errorState) invalid(op string) error {
	err := newInvalidStateError(StateError, op, "error state")
	err.Cause = s.reason
	return err
}
