package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error for recovery decisions.
// The channel runtime keys its retry/reconnect policy on Kind, never on
// error message text.
type Kind int

const (
	// KindConnectionFailed - a connect attempt was refused or unreachable
	KindConnectionFailed Kind = iota
	// KindConnectionLost - an established link dropped, or I/O was attempted while disconnected
	KindConnectionLost
	// KindSendFailed - the request bytes could not be written to the link
	KindSendFailed
	// KindTimeout - no (matching) response arrived within the deadline
	KindTimeout
	// KindProtocol - malformed frame, length mismatch, CRC failure or truncated payload
	KindProtocol
	// KindException - the device answered with a Modbus exception response
	KindException
	// KindMaxReconnectAttempts - the reconnect engine exhausted its attempt budget
	KindMaxReconnectAttempts
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindConnectionFailed:
		return "connection failed"
	case KindConnectionLost:
		return "connection lost"
	case KindSendFailed:
		return "send failed"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol error"
	case KindException:
		return "exception response"
	case KindMaxReconnectAttempts:
		return "max reconnect attempts exceeded"
	default:
		return "unknown"
	}
}

// Severity defines the severity level of an error
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// EngineError is the base error type for all fieldbus engine errors
type EngineError struct {
	Op       string   // Operation that failed
	Kind     Kind     // Error classification
	Err      error    // Underlying error
	Severity Severity // Error severity
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Severity, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Op, e.Kind)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Err
}

// New creates an engine error with the default severity for its kind.
func New(op string, kind Kind, err error) *EngineError {
	severity := SeverityError
	switch kind {
	case KindTimeout, KindException:
		severity = SeverityWarning
	case KindMaxReconnectAttempts:
		severity = SeverityCritical
	}
	return &EngineError{Op: op, Kind: kind, Err: err, Severity: severity}
}

// Newf creates an engine error wrapping a formatted message.
func Newf(op string, kind Kind, format string, args ...interface{}) *EngineError {
	return New(op, kind, fmt.Errorf(format, args...))
}

// ExceptionError represents a Modbus exception response from a device
type ExceptionError struct {
	EngineError
	Function byte // Function code of the original request
	Code     byte // Exception code reported by the device
}

// NewException creates a new exception response error
func NewException(op string, function, code byte) *ExceptionError {
	return &ExceptionError{
		EngineError: EngineError{
			Op:       op,
			Kind:     KindException,
			Severity: SeverityWarning,
		},
		Function: function,
		Code:     code,
	}
}

// Error implements the error interface
func (e *ExceptionError) Error() string {
	return fmt.Sprintf("[%s] %s: device exception 0x%02X for function 0x%02X",
		e.Severity, e.Op, e.Code, e.Function)
}

// KindOf extracts the kind from an error chain.
// Returns false if no EngineError is present in the chain.
func KindOf(err error) (Kind, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	var xe *ExceptionError
	if errors.As(err, &xe) {
		return xe.Kind, true
	}
	return 0, false
}

// IsTimeout reports whether the error chain contains a timeout
func IsTimeout(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTimeout
}

// IsConnectionLost reports whether the error chain contains a lost connection
func IsConnectionLost(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindConnectionLost || k == KindConnectionFailed)
}

// IsProtocol reports whether the error chain contains a protocol violation
func IsProtocol(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindProtocol
}

// IsException reports whether the error chain contains a device exception
func IsException(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindException
}
