package pdu

import (
	"encoding/binary"

	"fieldbus-engine/pkg/errors"
)

// Coil write sentinel values for function 0x05
const (
	coilOn  = 0xFF00
	coilOff = 0x0000
)

// BuildReadRequest encodes a read request for functions 0x01-0x04.
// The wire layout is exactly five bytes:
//
//	function(1) || start_address(BE16) || quantity(BE16)
func BuildReadRequest(fc FunctionCode, address, quantity uint16) ([]byte, error) {
	if !fc.IsRead() {
		return nil, errors.Newf("pdu.read", errors.KindProtocol, "not a read function: %s", fc)
	}

	limit := uint16(MaxReadRegisters)
	if fc.IsBitAccess() {
		limit = MaxReadBits
	}
	if quantity == 0 || quantity > limit {
		return nil, errors.Newf("pdu.read", errors.KindProtocol,
			"quantity %d out of range [1, %d] for %s", quantity, limit, fc)
	}

	p := make([]byte, 5)
	p[0] = byte(fc)
	binary.BigEndian.PutUint16(p[1:3], address)
	binary.BigEndian.PutUint16(p[3:5], quantity)
	return p, nil
}

// BuildWriteSingleCoil encodes a write-single-coil request (0x05).
// The on state is the sentinel 0xFF00, off is 0x0000.
func BuildWriteSingleCoil(address uint16, on bool) []byte {
	value := uint16(coilOff)
	if on {
		value = coilOn
	}
	p := make([]byte, 5)
	p[0] = byte(FuncWriteSingleCoil)
	binary.BigEndian.PutUint16(p[1:3], address)
	binary.BigEndian.PutUint16(p[3:5], value)
	return p
}

// BuildWriteSingleRegister encodes a write-single-register request (0x06)
func BuildWriteSingleRegister(address, value uint16) []byte {
	p := make([]byte, 5)
	p[0] = byte(FuncWriteSingleRegister)
	binary.BigEndian.PutUint16(p[1:3], address)
	binary.BigEndian.PutUint16(p[3:5], value)
	return p
}

// BuildWriteMultipleRegisters encodes a write-multiple-registers request
// (0x10): function || start || quantity || byte_count || values(BE16 each).
func BuildWriteMultipleRegisters(address uint16, values []uint16) ([]byte, error) {
	if len(values) == 0 || len(values) > MaxWriteRegisters {
		return nil, errors.Newf("pdu.write", errors.KindProtocol,
			"register count %d out of range [1, %d]", len(values), MaxWriteRegisters)
	}

	p := make([]byte, 6+2*len(values))
	p[0] = byte(FuncWriteMultipleRegisters)
	binary.BigEndian.PutUint16(p[1:3], address)
	binary.BigEndian.PutUint16(p[3:5], uint16(len(values)))
	p[5] = byte(2 * len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(p[6+2*i:8+2*i], v)
	}
	return p, nil
}

// BuildWriteMultipleCoils encodes a write-multiple-coils request (0x0F):
// function || start || quantity || byte_count || packed bits (LSB-first).
func BuildWriteMultipleCoils(address uint16, values []bool) ([]byte, error) {
	if len(values) == 0 || len(values) > MaxWriteBits {
		return nil, errors.Newf("pdu.write", errors.KindProtocol,
			"coil count %d out of range [1, %d]", len(values), MaxWriteBits)
	}

	packed := PackBits(values)
	p := make([]byte, 6+len(packed))
	p[0] = byte(FuncWriteMultipleCoils)
	binary.BigEndian.PutUint16(p[1:3], address)
	binary.BigEndian.PutUint16(p[3:5], uint16(len(values)))
	p[5] = byte(len(packed))
	copy(p[6:], packed)
	return p, nil
}

// BuildReadBitsResponse encodes the server-side response for a coil or
// discrete input read: function || byte_count || packed bits.
func BuildReadBitsResponse(fc FunctionCode, values []bool) []byte {
	packed := PackBits(values)
	p := make([]byte, 2+len(packed))
	p[0] = byte(fc)
	p[1] = byte(len(packed))
	copy(p[2:], packed)
	return p
}

// BuildReadRegistersResponse encodes the server-side response for a
// register read: function || byte_count || values(BE16 each).
func BuildReadRegistersResponse(fc FunctionCode, values []uint16) []byte {
	p := make([]byte, 2+2*len(values))
	p[0] = byte(fc)
	p[1] = byte(2 * len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(p[2+2*i:4+2*i], v)
	}
	return p
}
