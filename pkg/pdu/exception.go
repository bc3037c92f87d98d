package pdu

import (
	"fmt"

	"fieldbus-engine/pkg/errors"
)

// ExceptionCode is the one-byte error code carried by an exception response
type ExceptionCode byte

const (
	ExceptionIllegalFunction        ExceptionCode = 0x01
	ExceptionIllegalDataAddress     ExceptionCode = 0x02
	ExceptionIllegalDataValue       ExceptionCode = 0x03
	ExceptionSlaveDeviceFailure     ExceptionCode = 0x04
	ExceptionAcknowledge            ExceptionCode = 0x05
	ExceptionSlaveDeviceBusy        ExceptionCode = 0x06
	ExceptionMemoryParityError      ExceptionCode = 0x08
	ExceptionGatewayPathUnavailable ExceptionCode = 0x0A
	ExceptionGatewayTargetFailed    ExceptionCode = 0x0B
)

// String returns the string representation of the exception code
func (ec ExceptionCode) String() string {
	switch ec {
	case ExceptionIllegalFunction:
		return "illegal function"
	case ExceptionIllegalDataAddress:
		return "illegal data address"
	case ExceptionIllegalDataValue:
		return "illegal data value"
	case ExceptionSlaveDeviceFailure:
		return "slave device failure"
	case ExceptionAcknowledge:
		return "acknowledge"
	case ExceptionSlaveDeviceBusy:
		return "slave device busy"
	case ExceptionMemoryParityError:
		return "memory parity error"
	case ExceptionGatewayPathUnavailable:
		return "gateway path unavailable"
	case ExceptionGatewayTargetFailed:
		return "gateway target failed to respond"
	default:
		return fmt.Sprintf("ExceptionCode(0x%02X)", byte(ec))
	}
}

// BuildExceptionResponse builds the two-byte exception PDU for a request
// function code: the function byte with the exception bit set, followed
// by the exception code.
func BuildExceptionResponse(fc FunctionCode, code ExceptionCode) []byte {
	return []byte{fc.WithException(), byte(code)}
}

// CheckException inspects a response PDU and converts an exception
// response into an ExceptionError. A nil return means the PDU carries a
// normal response.
func CheckException(op string, p []byte) error {
	if len(p) == 0 {
		return errors.Newf(op, errors.KindProtocol, "empty response pdu")
	}
	if !IsExceptionByte(p[0]) {
		return nil
	}
	if len(p) < 2 {
		return errors.Newf(op, errors.KindProtocol, "truncated exception response (%d bytes)", len(p))
	}
	return errors.NewException(op, p[0]&^0x80, p[1])
}
