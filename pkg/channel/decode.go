package channel

import (
	"math"

	"fieldbus-engine/pkg/config"
	"fieldbus-engine/pkg/errors"
)

// extractBit pulls one bit point out of a group read result
func extractBit(p config.Point, group pointGroup, bits []bool) (Value, error) {
	offset := int(p.Address - group.start)
	if offset >= len(bits) {
		return Value{}, errors.Newf("channel.decode", errors.KindProtocol,
			"point %d at offset %d outside %d returned bits", p.ID, offset, len(bits))
	}
	return BoolValue(bits[offset]), nil
}

// extractRegisters pulls one numeric point out of a group read result
// and applies engineering-unit scaling: value*scale + offset.
func extractRegisters(p config.Point, group pointGroup, regs []uint16) (Value, error) {
	offset := int(p.Address - group.start)
	width := int(p.Type.RegisterCount())
	if offset+width > len(regs) {
		return Value{}, errors.Newf("channel.decode", errors.KindProtocol,
			"point %d needs registers [%d,%d) of %d returned", p.ID, offset, offset+width, len(regs))
	}

	var raw float64
	isInteger := true
	switch p.Type {
	case config.TypeUint16:
		raw = float64(regs[offset])
	case config.TypeInt16:
		raw = float64(int16(regs[offset]))
	case config.TypeUint32:
		raw = float64(uint32(regs[offset])<<16 | uint32(regs[offset+1]))
	case config.TypeInt32:
		raw = float64(int32(uint32(regs[offset])<<16 | uint32(regs[offset+1])))
	case config.TypeFloat32:
		raw = float64(math.Float32frombits(uint32(regs[offset])<<16 | uint32(regs[offset+1])))
		isInteger = false
	default:
		return Value{}, errors.Newf("channel.decode", errors.KindProtocol,
			"point %d has non-register type %s", p.ID, p.Type)
	}

	scaled := raw*p.Scale + p.Offset
	if isInteger && p.Scale == 1 && p.Offset == 0 {
		return IntValue(int64(raw)), nil
	}
	return FloatValue(scaled), nil
}

// registersForWrite converts an engineering-unit command value back
// into raw register words for a writable numeric point.
func registersForWrite(p config.Point, v Value) ([]uint16, error) {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	raw := (v.AsFloat() - p.Offset) / scale

	switch p.Type {
	case config.TypeUint16:
		if raw < 0 || raw > math.MaxUint16 {
			return nil, errors.Newf("channel.write", errors.KindProtocol,
				"point %d raw value %g outside uint16 range", p.ID, raw)
		}
		return []uint16{uint16(math.Round(raw))}, nil
	case config.TypeInt16:
		if raw < math.MinInt16 || raw > math.MaxInt16 {
			return nil, errors.Newf("channel.write", errors.KindProtocol,
				"point %d raw value %g outside int16 range", p.ID, raw)
		}
		return []uint16{uint16(int16(math.Round(raw)))}, nil
	case config.TypeUint32:
		u := uint32(math.Round(raw))
		return []uint16{uint16(u >> 16), uint16(u)}, nil
	case config.TypeInt32:
		u := uint32(int32(math.Round(raw)))
		return []uint16{uint16(u >> 16), uint16(u)}, nil
	case config.TypeFloat32:
		u := math.Float32bits(float32(raw))
		return []uint16{uint16(u >> 16), uint16(u)}, nil
	default:
		return nil, errors.Newf("channel.write", errors.KindProtocol,
			"point %d type %s is not register-writable", p.ID, p.Type)
	}
}
