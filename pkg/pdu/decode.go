package pdu

import (
	"encoding/binary"

	"fieldbus-engine/pkg/errors"
)

// ReadRequest is a decoded read request (functions 0x01-0x04)
type ReadRequest struct {
	Function FunctionCode
	Address  uint16
	Quantity uint16
}

// DecodeReadRequest decodes the five-byte read request layout.
// Used by the loopback test server and by diagnostics that inspect
// recorded transport traffic.
func DecodeReadRequest(p []byte) (ReadRequest, error) {
	if len(p) != 5 {
		return ReadRequest{}, errors.Newf("pdu.decode", errors.KindProtocol,
			"read request must be 5 bytes, got %d", len(p))
	}
	fc := FunctionCode(p[0])
	if !fc.IsRead() {
		return ReadRequest{}, errors.Newf("pdu.decode", errors.KindProtocol,
			"not a read function: 0x%02X", p[0])
	}
	return ReadRequest{
		Function: fc,
		Address:  binary.BigEndian.Uint16(p[1:3]),
		Quantity: binary.BigEndian.Uint16(p[3:5]),
	}, nil
}

// DecodeReadBitsResponse decodes a coil/discrete read response into
// count boolean values. The response must carry at least
// ceil(count/8) data bytes behind its byte-count header.
func DecodeReadBitsResponse(fc FunctionCode, p []byte, count int) ([]bool, error) {
	data, err := responseData(fc, p)
	if err != nil {
		return nil, err
	}
	need := (count + 7) / 8
	if len(data) < need {
		return nil, errors.Newf("pdu.decode", errors.KindProtocol,
			"bit response carries %d bytes, need %d for %d bits", len(data), need, count)
	}
	return UnpackBits(data, count), nil
}

// DecodeReadRegistersResponse decodes a register read response into
// 16-bit values, big-endian each.
func DecodeReadRegistersResponse(fc FunctionCode, p []byte) ([]uint16, error) {
	data, err := responseData(fc, p)
	if err != nil {
		return nil, err
	}
	if len(data)%2 != 0 {
		return nil, errors.Newf("pdu.decode", errors.KindProtocol,
			"register response byte count %d is odd", len(data))
	}
	values := make([]uint16, len(data)/2)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(data[2*i : 2*i+2])
	}
	return values, nil
}

// DecodeWriteResponse validates the echo of a single-register or
// single-coil write (0x05/0x06) and of the multiple-write
// acknowledgements (0x0F/0x10). Returns the echoed address and
// value/quantity field.
func DecodeWriteResponse(fc FunctionCode, p []byte) (address, value uint16, err error) {
	if err := CheckException("pdu.decode", p); err != nil {
		return 0, 0, err
	}
	if len(p) != 5 {
		return 0, 0, errors.Newf("pdu.decode", errors.KindProtocol,
			"write response must be 5 bytes, got %d", len(p))
	}
	if FunctionCode(p[0]) != fc {
		return 0, 0, errors.Newf("pdu.decode", errors.KindProtocol,
			"write response echoes function 0x%02X, expected %s", p[0], fc)
	}
	return binary.BigEndian.Uint16(p[1:3]), binary.BigEndian.Uint16(p[3:5]), nil
}

// responseData validates the common read response envelope
// (function || byte_count || data) and returns the data slice.
// Every length is checked before slicing; truncated payloads are
// rejected as protocol errors.
func responseData(fc FunctionCode, p []byte) ([]byte, error) {
	if err := CheckException("pdu.decode", p); err != nil {
		return nil, err
	}
	if len(p) < 2 {
		return nil, errors.Newf("pdu.decode", errors.KindProtocol,
			"response pdu too short (%d bytes)", len(p))
	}
	if FunctionCode(p[0]) != fc {
		return nil, errors.Newf("pdu.decode", errors.KindProtocol,
			"response function 0x%02X does not match request %s", p[0], fc)
	}
	byteCount := int(p[1])
	if len(p)-2 < byteCount {
		return nil, errors.Newf("pdu.decode", errors.KindProtocol,
			"response declares %d data bytes but carries %d", byteCount, len(p)-2)
	}
	return p[2 : 2+byteCount], nil
}
