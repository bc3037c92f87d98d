package pdu

import (
	"bytes"
	stderrors "errors"
	"testing"

	"fieldbus-engine/pkg/errors"
)

// TestBuildExceptionResponse tests the two-byte exception layout
func TestBuildExceptionResponse(t *testing.T) {
	p := BuildExceptionResponse(FuncReadHoldingRegisters, ExceptionIllegalDataAddress)
	if !bytes.Equal(p, []byte{0x83, 0x02}) {
		t.Errorf("got % 02X, expected 83 02", p)
	}
}

// TestCheckException tests exception detection and conversion
func TestCheckException(t *testing.T) {
	// Normal responses pass through
	if err := CheckException("test", []byte{0x03, 0x02, 0x12, 0x34}); err != nil {
		t.Errorf("normal response rejected: %v", err)
	}

	// Exception responses surface function and code
	err := CheckException("test", []byte{0x83, 0x02})
	if err == nil {
		t.Fatal("exception response not detected")
	}
	if !errors.IsException(err) {
		t.Fatalf("expected exception kind, got %v", err)
	}
	var xe *errors.ExceptionError
	if !stderrors.As(err, &xe) {
		t.Fatal("expected ExceptionError in chain")
	}
	if xe.Function != 0x03 || xe.Code != 0x02 {
		t.Errorf("got function 0x%02X code 0x%02X", xe.Function, xe.Code)
	}

	// Malformed responses are protocol errors
	if err := CheckException("test", nil); !errors.IsProtocol(err) {
		t.Errorf("empty pdu: expected protocol error, got %v", err)
	}
	if err := CheckException("test", []byte{0x83}); !errors.IsProtocol(err) {
		t.Errorf("truncated exception: expected protocol error, got %v", err)
	}
}

// TestExceptionCodeStrings tests that every standard code has a name
func TestExceptionCodeStrings(t *testing.T) {
	codes := []ExceptionCode{
		ExceptionIllegalFunction, ExceptionIllegalDataAddress, ExceptionIllegalDataValue,
		ExceptionSlaveDeviceFailure, ExceptionAcknowledge, ExceptionSlaveDeviceBusy,
		ExceptionMemoryParityError, ExceptionGatewayPathUnavailable, ExceptionGatewayTargetFailed,
	}
	for _, code := range codes {
		if s := code.String(); s == "" || s[0] == 'E' {
			t.Errorf("code 0x%02X has no name: %q", byte(code), s)
		}
	}
	if s := ExceptionCode(0x7F).String(); s != "ExceptionCode(0x7F)" {
		t.Errorf("unknown code string: %q", s)
	}
}
