package channel

import (
	"math"
	"testing"

	"fieldbus-engine/pkg/config"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestExtractRegistersTypes tests decoding every register-backed type
func TestExtractRegistersTypes(t *testing.T) {
	group := pointGroup{start: 100}

	tests := []struct {
		name     string
		point    config.Point
		regs     []uint16
		expected Value
	}{
		{
			"uint16 unscaled",
			config.Point{ID: 1, Address: 100, Type: config.TypeUint16, Scale: 1},
			[]uint16{466},
			IntValue(466),
		},
		{
			"int16 negative",
			config.Point{ID: 2, Address: 100, Type: config.TypeInt16, Scale: 1},
			[]uint16{0xFFFE},
			IntValue(-2),
		},
		{
			"uint16 scaled",
			config.Point{ID: 3, Address: 100, Type: config.TypeUint16, Scale: 0.1},
			[]uint16{466},
			FloatValue(46.6),
		},
		{
			"uint16 with offset",
			config.Point{ID: 4, Address: 100, Type: config.TypeUint16, Scale: 1, Offset: -40},
			[]uint16{100},
			FloatValue(60),
		},
		{
			"uint32 word order",
			config.Point{ID: 5, Address: 100, Type: config.TypeUint32, Scale: 1},
			[]uint16{0x0001, 0x0000},
			IntValue(65536),
		},
		{
			"int32 negative",
			config.Point{ID: 6, Address: 100, Type: config.TypeInt32, Scale: 1},
			[]uint16{0xFFFF, 0xFFFF},
			IntValue(-1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractRegisters(tt.point, group, tt.regs)
			if err != nil {
				t.Fatalf("extract failed: %v", err)
			}
			if got.Kind != tt.expected.Kind {
				t.Fatalf("kind %v, expected %v", got.Kind, tt.expected.Kind)
			}
			if !almostEqual(got.AsFloat(), tt.expected.AsFloat()) {
				t.Errorf("value %v, expected %v", got, tt.expected)
			}
		})
	}
}

// TestExtractRegistersFloat32 tests IEEE 754 decoding with word split
func TestExtractRegistersFloat32(t *testing.T) {
	bits := math.Float32bits(3.14)
	regs := []uint16{uint16(bits >> 16), uint16(bits)}

	p := config.Point{ID: 1, Address: 0, Type: config.TypeFloat32, Scale: 1}
	got, err := extractRegisters(p, pointGroup{start: 0}, regs)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !almostEqual(got.Float, float64(float32(3.14))) {
		t.Errorf("got %v", got)
	}
}

// TestExtractRegistersOutOfRange tests bounds checking on short results
func TestExtractRegistersOutOfRange(t *testing.T) {
	p := config.Point{ID: 1, Address: 104, Type: config.TypeUint32, Scale: 1}
	if _, err := extractRegisters(p, pointGroup{start: 100}, []uint16{1, 2, 3, 4, 5}); err == nil {
		t.Error("extract accepted registers beyond the returned slice")
	}
}

// TestExtractBit tests bit extraction and bounds checking
func TestExtractBit(t *testing.T) {
	p := config.Point{ID: 1, Address: 12, Type: config.TypeCoil}
	group := pointGroup{start: 10}

	got, err := extractBit(p, group, []bool{false, false, true})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !got.Bool {
		t.Error("expected true at offset 2")
	}

	if _, err := extractBit(p, group, []bool{false, false}); err == nil {
		t.Error("extract accepted offset beyond returned bits")
	}
}

// TestRegistersForWrite tests engineering-to-raw conversion for writes
func TestRegistersForWrite(t *testing.T) {
	tests := []struct {
		name     string
		point    config.Point
		value    Value
		expected []uint16
	}{
		{
			"uint16 descaled",
			config.Point{ID: 1, Type: config.TypeUint16, Scale: 0.1},
			FloatValue(46.6),
			[]uint16{466},
		},
		{
			"int16 negative",
			config.Point{ID: 2, Type: config.TypeInt16, Scale: 1},
			IntValue(-2),
			[]uint16{0xFFFE},
		},
		{
			"uint32 word split",
			config.Point{ID: 3, Type: config.TypeUint32, Scale: 1},
			IntValue(65536),
			[]uint16{0x0001, 0x0000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs, err := registersForWrite(tt.point, tt.value)
			if err != nil {
				t.Fatalf("conversion failed: %v", err)
			}
			if len(regs) != len(tt.expected) {
				t.Fatalf("got %d registers, expected %d", len(regs), len(tt.expected))
			}
			for i := range regs {
				if regs[i] != tt.expected[i] {
					t.Errorf("register %d: 0x%04X, expected 0x%04X", i, regs[i], tt.expected[i])
				}
			}
		})
	}
}

// TestRegistersForWriteRangeChecks tests raw range enforcement
func TestRegistersForWriteRangeChecks(t *testing.T) {
	u16 := config.Point{ID: 1, Type: config.TypeUint16, Scale: 1}
	if _, err := registersForWrite(u16, IntValue(70000)); err == nil {
		t.Error("accepted value above uint16 range")
	}
	if _, err := registersForWrite(u16, IntValue(-1)); err == nil {
		t.Error("accepted negative value for uint16")
	}

	i16 := config.Point{ID: 2, Type: config.TypeInt16, Scale: 1}
	if _, err := registersForWrite(i16, IntValue(40000)); err == nil {
		t.Error("accepted value above int16 range")
	}

	bit := config.Point{ID: 3, Type: config.TypeCoil}
	if _, err := registersForWrite(bit, BoolValue(true)); err == nil {
		t.Error("accepted coil point for register conversion")
	}
}
