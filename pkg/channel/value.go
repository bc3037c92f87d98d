package channel

import "fmt"

// ValueKind discriminates the Value union
type ValueKind int

const (
	KindBool ValueKind = iota
	KindInt
	KindFloat
	KindBytes
)

// Value is a decoded point value in engineering units
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   int64
	Float float64
	Bytes []byte
}

// BoolValue wraps a boolean point value
func BoolValue(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// IntValue wraps an integer point value
func IntValue(v int64) Value {
	return Value{Kind: KindInt, Int: v}
}

// FloatValue wraps a floating point value
func FloatValue(v float64) Value {
	return Value{Kind: KindFloat, Float: v}
}

// BytesValue wraps a raw byte point value
func BytesValue(v []byte) Value {
	return Value{Kind: KindBytes, Bytes: v}
}

// AsFloat converts any numeric value to float64; booleans map to 0/1
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	default:
		return 0
	}
}

// String returns the string representation of the value
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBytes:
		return fmt.Sprintf("%02X", v.Bytes)
	default:
		return "invalid"
	}
}
