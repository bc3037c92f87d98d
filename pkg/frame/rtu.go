package frame

import (
	"fieldbus-engine/pkg/crc"
	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/pdu"
)

// RTU frame geometry
const (
	// rtuOverhead is the unit id byte plus the two CRC bytes
	rtuOverhead = 3

	// rtuMinFrame is the smallest valid frame: unit, function, one data
	// byte (an exception code), CRC16.
	rtuMinFrame = 5
)

// RTUFrame is a parsed RTU-mode frame
type RTUFrame struct {
	UnitID byte
	PDU    []byte
}

// BuildRTU wraps a PDU in RTU framing:
//
//	unit_id || pdu || crc16_le(unit_id || pdu)
func BuildRTU(unitID byte, p []byte) []byte {
	adu := make([]byte, 1+len(p)+2)
	adu[0] = unitID
	copy(adu[1:], p)
	crc.Put(adu[1+len(p):], crc.Checksum(adu[:1+len(p)]))
	return adu
}

// ParseRTU unwraps an RTU frame, recomputing the CRC over everything
// except the trailing two bytes. A checksum mismatch is a protocol
// error and not fatal to the channel; the caller may resynchronize on
// the next frame boundary.
func ParseRTU(buf []byte) (RTUFrame, error) {
	if len(buf) < rtuMinFrame {
		return RTUFrame{}, errors.Newf("frame.rtu", errors.KindProtocol,
			"frame too short: %d bytes", len(buf))
	}
	if !crc.Verify(buf) {
		return RTUFrame{}, errors.Newf("frame.rtu", errors.KindProtocol,
			"crc mismatch in %d byte frame", len(buf))
	}
	return RTUFrame{
		UnitID: buf[0],
		PDU:    buf[1 : len(buf)-2],
	}, nil
}

// ExpectedRTULength reports the total frame size for a response once
// enough bytes have arrived to determine it. RTU carries no length
// field, so the size follows from the function code: read responses
// declare a byte count, write responses echo a fixed five-byte PDU and
// exception responses are two PDU bytes.
func ExpectedRTULength(buf []byte) (int, bool) {
	if len(buf) < 2 {
		return 0, false
	}

	fc := buf[1]
	if pdu.IsExceptionByte(fc) {
		return rtuMinFrame, true
	}

	switch pdu.FunctionCode(fc) {
	case pdu.FuncReadCoils, pdu.FuncReadDiscreteInputs,
		pdu.FuncReadHoldingRegisters, pdu.FuncReadInputRegisters:
		// unit || fc || byte_count || data || crc
		if len(buf) < 3 {
			return 0, false
		}
		return rtuOverhead + 2 + int(buf[2]), true
	case pdu.FuncWriteSingleCoil, pdu.FuncWriteSingleRegister,
		pdu.FuncWriteMultipleCoils, pdu.FuncWriteMultipleRegisters:
		// fixed echo: unit || fc || addr(2) || value(2) || crc
		return rtuOverhead + 5, true
	default:
		// Unknown function: let the caller parse what it has and fail
		// with a protocol error instead of waiting forever.
		return len(buf), true
	}
}
