package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestEngineErrorCreation tests creating and formatting an EngineError
func TestEngineErrorCreation(t *testing.T) {
	baseErr := fmt.Errorf("connection refused")
	err := New("transport.connect", KindConnectionFailed, baseErr)

	if err.Op != "transport.connect" {
		t.Errorf("expected op 'transport.connect', got %q", err.Op)
	}
	if err.Kind != KindConnectionFailed {
		t.Errorf("expected KindConnectionFailed, got %v", err.Kind)
	}
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}
	t.Logf("EngineError message: %s", err.Error())
}

// TestSeverityDefaults tests the default severity per kind
func TestSeverityDefaults(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected Severity
	}{
		{KindConnectionFailed, SeverityError},
		{KindConnectionLost, SeverityError},
		{KindTimeout, SeverityWarning},
		{KindException, SeverityWarning},
		{KindProtocol, SeverityError},
		{KindMaxReconnectAttempts, SeverityCritical},
	}

	for _, tt := range tests {
		err := New("op", tt.kind, fmt.Errorf("x"))
		if err.Severity != tt.expected {
			t.Errorf("kind %v: severity %v, expected %v", tt.kind, err.Severity, tt.expected)
		}
	}
}

// TestErrorUnwrapping tests error unwrapping through wrapped chains
func TestErrorUnwrapping(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	err := New("test", KindTimeout, baseErr)

	if unwrapped := errors.Unwrap(err); unwrapped != baseErr {
		t.Error("expected to unwrap to base error")
	}

	// Kind must survive another wrapping layer
	wrapped := fmt.Errorf("outer context: %w", err)
	kind, ok := KindOf(wrapped)
	if !ok || kind != KindTimeout {
		t.Errorf("KindOf(wrapped) = (%v, %v), expected (KindTimeout, true)", kind, ok)
	}
}

// TestExceptionError tests the device exception error type
func TestExceptionError(t *testing.T) {
	err := NewException("client.read", 0x03, 0x02)

	if !IsException(err) {
		t.Error("IsException should report true")
	}
	if err.Function != 0x03 || err.Code != 0x02 {
		t.Errorf("got function 0x%02X code 0x%02X", err.Function, err.Code)
	}

	var xe *ExceptionError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &xe) {
		t.Error("ExceptionError not found in wrapped chain")
	}
}

// TestClassificationHelpers tests the recovery decision helpers
func TestClassificationHelpers(t *testing.T) {
	if !IsTimeout(New("op", KindTimeout, nil)) {
		t.Error("IsTimeout failed")
	}
	if !IsConnectionLost(New("op", KindConnectionLost, nil)) {
		t.Error("IsConnectionLost failed for lost connection")
	}
	if !IsConnectionLost(New("op", KindConnectionFailed, nil)) {
		t.Error("IsConnectionLost should cover failed connects")
	}
	if !IsProtocol(Newf("op", KindProtocol, "bad frame")) {
		t.Error("IsProtocol failed")
	}
	if IsTimeout(fmt.Errorf("plain error")) {
		t.Error("IsTimeout matched a plain error")
	}
	if _, ok := KindOf(fmt.Errorf("plain error")); ok {
		t.Error("KindOf matched a plain error")
	}
}
