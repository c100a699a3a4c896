// Package errors provides structured error handling for gvmclient operations.
// It defines error codes, the generic error base type and the argument,
// transport and configuration errors shared by the rest of the library.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"

	// Protocol errors.
	CodeInvalidState ErrorCode = "INVALID_STATE"
	CodeParse        ErrorCode = "PARSE"
	CodeStatus       ErrorCode = "STATUS"

	// Command builder errors.
	CodeRequiredArgument ErrorCode = "REQUIRED_ARGUMENT"
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"

	// Transport errors.
	CodeTransport      ErrorCode = "TRANSPORT"
	CodeConnectFailed  ErrorCode = "CONNECT_FAILED"
	CodeConnectionLost ErrorCode = "CONNECTION_LOST"

	// HTTP API errors.
	CodeHTTP ErrorCode = "HTTP"
)

// Coder is implemented by every error type of this library.
type Coder interface {
	ErrorCode() ErrorCode
}

// GvmError is the generic error kind for domain failures that do not have
// a more specific type.
type GvmError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *GvmError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *GvmError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error code.
func (e *GvmError) ErrorCode() ErrorCode {
	return e.Code
}

// WithContext adds context information to the error.
func (e *GvmError) WithContext(key string, value interface{}) *GvmError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new generic error with the specified code and message.
func New(code ErrorCode, message string) *GvmError {
	return &GvmError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error as a generic error.
func Wrap(code ErrorCode, message string, err error) *GvmError {
	return &GvmError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// RequiredArgumentError is returned by command builders when a mandatory
// argument is missing. It is raised before any request bytes are produced.
type RequiredArgumentError struct {
	Function string
	Argument string
}

// Error implements the error interface.
func (e *RequiredArgumentError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("[%s] %s requires a %s argument", CodeRequiredArgument, e.Function, e.Argument)
	}
	return fmt.Sprintf("[%s] required argument %s missing", CodeRequiredArgument, e.Argument)
}

// ErrorCode returns CodeRequiredArgument.
func (e *RequiredArgumentError) ErrorCode() ErrorCode {
	return CodeRequiredArgument
}

// NewRequiredArgument creates a required argument error.
func NewRequiredArgument(function, argument string) *RequiredArgumentError {
	return &RequiredArgumentError{Function: function, Argument: argument}
}

// InvalidArgumentError is returned by command builders when an argument has
// a value outside of what the server grammar accepts.
type InvalidArgumentError struct {
	Function string
	Argument string
	Value    interface{}
	Allowed  []string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	msg := fmt.Sprintf("[%s] invalid value %v for argument %s", CodeInvalidArgument, e.Value, e.Argument)
	if e.Function != "" {
		msg = fmt.Sprintf("%s of %s", msg, e.Function)
	}
	if len(e.Allowed) > 0 {
		msg = fmt.Sprintf("%s (allowed: %v)", msg, e.Allowed)
	}
	return msg
}

// ErrorCode returns CodeInvalidArgument.
func (e *InvalidArgumentError) ErrorCode() ErrorCode {
	return CodeInvalidArgument
}

// NewInvalidArgument creates an invalid argument error.
func NewInvalidArgument(function, argument string, value interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{Function: function, Argument: argument, Value: value}
}

// TransportError represents a failure of the byte stream underneath the
// protocol connection.
type TransportError struct {
	Code    ErrorCode
	Op      string
	Address string
	Cause   error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := fmt.Sprintf("[%s] %s failed", e.Code, e.Op)
	if e.Address != "" {
		msg = fmt.Sprintf("%s (address: %s)", msg, e.Address)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error code.
func (e *TransportError) ErrorCode() ErrorCode {
	return e.Code
}

// NewTransportError creates a transport error for the given operation.
func NewTransportError(code ErrorCode, op, address string, err error) *TransportError {
	return &TransportError{
		Code:    code,
		Op:      op,
		Address: address,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error code.
func (e *ConfigError) ErrorCode() ErrorCode {
	return e.Code
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
	}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error, or any error it wraps, has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return CodeUnknown
}

// IsRetryable determines if an error indicates a retryable condition.
// Retrying always means a new connection: the library never reconnects
// on its own.
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case CodeTimeout, CodeConnectFailed, CodeConnectionLost:
		return true
	default:
		return false
	}
}

// IsFatal determines if an error indicates a fatal condition that should stop execution.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeConfiguration, CodeInvalidState:
		return true
	default:
		return false
	}
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}
