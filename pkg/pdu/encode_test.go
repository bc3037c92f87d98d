package pdu

import (
	"bytes"
	"testing"

	"fieldbus-engine/pkg/errors"
)

// TestBuildReadRequest tests the five-byte read request layout
func TestBuildReadRequest(t *testing.T) {
	tests := []struct {
		name     string
		fc       FunctionCode
		address  uint16
		quantity uint16
		expected []byte
	}{
		{"holding registers", FuncReadHoldingRegisters, 40001, 10, []byte{0x03, 0x9C, 0x41, 0x00, 0x0A}},
		{"coils", FuncReadCoils, 0, 1, []byte{0x01, 0x00, 0x00, 0x00, 0x01}},
		{"input registers", FuncReadInputRegisters, 0x006B, 3, []byte{0x04, 0x00, 0x6B, 0x00, 0x03}},
		{"discrete inputs max", FuncReadDiscreteInputs, 0x1234, 2000, []byte{0x02, 0x12, 0x34, 0x07, 0xD0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildReadRequest(tt.fc, tt.address, tt.quantity)
			if err != nil {
				t.Fatalf("BuildReadRequest failed: %v", err)
			}
			if !bytes.Equal(p, tt.expected) {
				t.Errorf("got % 02X, expected % 02X", p, tt.expected)
			}
		})
	}
}

// TestBuildReadRequestLimits tests quantity range enforcement per function
func TestBuildReadRequestLimits(t *testing.T) {
	tests := []struct {
		name     string
		fc       FunctionCode
		quantity uint16
	}{
		{"zero quantity", FuncReadHoldingRegisters, 0},
		{"registers over limit", FuncReadHoldingRegisters, 126},
		{"input registers over limit", FuncReadInputRegisters, 200},
		{"coils over limit", FuncReadCoils, 2001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildReadRequest(tt.fc, 0, tt.quantity)
			if err == nil {
				t.Fatalf("expected error for quantity %d on %s", tt.quantity, tt.fc)
			}
			if !errors.IsProtocol(err) {
				t.Errorf("expected protocol error, got %v", err)
			}
		})
	}

	// Write functions must be rejected outright
	if _, err := BuildReadRequest(FuncWriteSingleCoil, 0, 1); err == nil {
		t.Error("expected error for write function code")
	}
}

// TestBuildWriteSingleCoil tests the 0xFF00/0x0000 coil sentinels
func TestBuildWriteSingleCoil(t *testing.T) {
	on := BuildWriteSingleCoil(0x00AC, true)
	if !bytes.Equal(on, []byte{0x05, 0x00, 0xAC, 0xFF, 0x00}) {
		t.Errorf("coil on: got % 02X", on)
	}

	off := BuildWriteSingleCoil(0x00AC, false)
	if !bytes.Equal(off, []byte{0x05, 0x00, 0xAC, 0x00, 0x00}) {
		t.Errorf("coil off: got % 02X", off)
	}
}

// TestBuildWriteSingleRegister tests the single register write layout
func TestBuildWriteSingleRegister(t *testing.T) {
	p := BuildWriteSingleRegister(0x0010, 0x3039)
	if !bytes.Equal(p, []byte{0x06, 0x00, 0x10, 0x30, 0x39}) {
		t.Errorf("got % 02X", p)
	}
}

// TestBuildWriteMultipleRegisters tests the block write layout
func TestBuildWriteMultipleRegisters(t *testing.T) {
	p, err := BuildWriteMultipleRegisters(0x0001, []uint16{0x000A, 0x0102})
	if err != nil {
		t.Fatalf("BuildWriteMultipleRegisters failed: %v", err)
	}
	expected := []byte{0x10, 0x00, 0x01, 0x00, 0x02, 0x04, 0x00, 0x0A, 0x01, 0x02}
	if !bytes.Equal(p, expected) {
		t.Errorf("got % 02X, expected % 02X", p, expected)
	}

	if _, err := BuildWriteMultipleRegisters(0, nil); err == nil {
		t.Error("expected error for empty register block")
	}
	if _, err := BuildWriteMultipleRegisters(0, make([]uint16, MaxWriteRegisters+1)); err == nil {
		t.Error("expected error for oversized register block")
	}
}

// TestBuildWriteMultipleCoils tests the packed coil block layout
func TestBuildWriteMultipleCoils(t *testing.T) {
	values := []bool{true, false, true, true, false, false, true, false, true}
	p, err := BuildWriteMultipleCoils(0x0013, values)
	if err != nil {
		t.Fatalf("BuildWriteMultipleCoils failed: %v", err)
	}
	expected := []byte{0x0F, 0x00, 0x13, 0x00, 0x09, 0x02, 0x4D, 0x01}
	if !bytes.Equal(p, expected) {
		t.Errorf("got % 02X, expected % 02X", p, expected)
	}

	if _, err := BuildWriteMultipleCoils(0, make([]bool, MaxWriteBits+1)); err == nil {
		t.Error("expected error for oversized coil block")
	}
}
