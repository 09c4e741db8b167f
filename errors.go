package serial

import (
	"errors"
	"fmt"
)

// Code identifies the failure class of a PortError.
type Code string

const (
	CodeOpenFailed     Code = "OPEN_FAILED"
	CodeNotTerminal    Code = "NOT_A_TERMINAL"
	CodeBadBaudRate    Code = "UNSUPPORTED_BAUD_RATE"
	CodeBadCharSize    Code = "UNSUPPORTED_CHAR_SIZE"
	CodeBadStopBits    Code = "UNSUPPORTED_STOP_BITS"
	CodeGetAttrFailed  Code = "GET_ATTR_FAILED"
	CodeSetAttrFailed  Code = "SET_ATTR_FAILED"
	CodeSetAttrRetries Code = "SET_ATTR_RETRY_EXHAUSTED"
	CodeClosed         Code = "PORT_CLOSED"
)

// PortError is the error type returned by every failing operation in this
// package. Code is a stable identifier for the failure class, Message a
// human-readable description, and Err the underlying system error, if any.
type PortError struct {
	Code    Code
	Message string
	Err     error
}

func (e *PortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serial: [%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("serial: [%s] %s", e.Code, e.Message)
}

func (e *PortError) Unwrap() error {
	return e.Err
}

func newError(code Code, format string, args ...interface{}) *PortError {
	return &PortError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(err error, code Code, format string, args ...interface{}) *PortError {
	return &PortError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsCode reports whether err is (or wraps) a PortError with the given code.
func IsCode(err error, code Code) bool {
	var pe *PortError
	return errors.As(err, &pe) && pe.Code == code
}
