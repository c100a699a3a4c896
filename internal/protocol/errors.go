package protocol

import (
	"fmt"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// InvalidStateError reports an operation attempted from a state that does
// not accept it. It signals a programming error, not a protocol error.
type InvalidStateError struct {
	State   State
	Op      string
	Message string
	// Cause is the error that moved the connection into the Error state, if any.
	Cause error
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("[%s] cannot %s in state %s: %s", gvmerrors.CodeInvalidState, e.Op, e.State, e.Message)
}

// Unwrap returns the error that caused the Error state.
func (e *InvalidStateError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns CodeInvalidState.
func (e *InvalidStateError) ErrorCode() gvmerrors.ErrorCode {
	return gvmerrors.CodeInvalidState
}

func newInvalidStateError(state State, op, message string) *InvalidStateError {
	return &InvalidStateError{State: state, Op: op, Message: message}
}

// ParseError reports bytes that are not well-formed XML. Chunk is the
// chunk that was being fed when the parser gave up and Offset the position
// in the reply stream at which it did.
type ParseError struct {
	Chunk  []byte
	Offset int64
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] malformed XML at offset %d: %v", gvmerrors.CodeParse, e.Offset, e.Cause)
}

// Unwrap returns the parser diagnostic.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns CodeParse.
func (e *ParseError) ErrorCode() gvmerrors.ErrorCode {
	return gvmerrors.CodeParse
}

// StatusError reports a well-formed reply whose status attribute is not a
// success code. The Response stays fully usable.
type StatusError struct {
	Response *Response
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	status, ok := e.Response.StatusCode()
	name := e.Response.Name()
	if name == "" {
		name = "response"
	}
	if !ok {
		return fmt.Sprintf("[%s] %s carries no status", gvmerrors.CodeStatus, name)
	}
	if text := e.Response.StatusText(); text != "" {
		return fmt.Sprintf("[%s] %s returned status %d: %s", gvmerrors.CodeStatus, name, status, text)
	}
	return fmt.Sprintf("[%s] %s returned status %d", gvmerrors.CodeStatus, name, status)
}

// ErrorCode returns CodeStatus.
func (e *StatusError) ErrorCode() gvmerrors.ErrorCode {
	return gvmerrors.CodeStatus
}

// Status returns the status code of the failed response, or 0 when the
// response has none.
func (e *StatusError) Status() int {
	status, _ := e.Response.StatusCode()
	return status
}

// StatusText returns the status_text attribute of the failed response.
func (e *StatusError) StatusText() string {
	return e.Response.StatusText()
}
