package config

// PointType is the decoded data type of a point
type PointType string

const (
	TypeCoil     PointType = "coil"
	TypeDiscrete PointType = "discrete"
	TypeUint16   PointType = "uint16"
	TypeInt16    PointType = "int16"
	TypeUint32   PointType = "uint32"
	TypeInt32    PointType = "int32"
	TypeFloat32  PointType = "float32"
)

// IsValid reports whether the type is one of the supported point types
func (t PointType) IsValid() bool {
	switch t {
	case TypeCoil, TypeDiscrete, TypeUint16, TypeInt16, TypeUint32, TypeInt32, TypeFloat32:
		return true
	default:
		return false
	}
}

// IsBit reports whether the type lives in coil/discrete bit space
func (t PointType) IsBit() bool {
	return t == TypeCoil || t == TypeDiscrete
}

// RegisterCount returns how many 16-bit registers the type occupies.
// Bit types return zero.
func (t PointType) RegisterCount() uint16 {
	switch t {
	case TypeUint16, TypeInt16:
		return 1
	case TypeUint32, TypeInt32, TypeFloat32:
		return 2
	default:
		return 0
	}
}

// RegisterSpace selects which register table a numeric point reads from
type RegisterSpace string

const (
	SpaceHolding RegisterSpace = "holding"
	SpaceInput   RegisterSpace = "input"
)

// AccessMode restricts the directions a point may be used in
type AccessMode string

const (
	AccessRead      AccessMode = "r"
	AccessWrite     AccessMode = "w"
	AccessReadWrite AccessMode = "rw"
)

// CanRead reports whether the point participates in poll cycles
func (m AccessMode) CanRead() bool {
	return m == AccessRead || m == AccessReadWrite
}

// CanWrite reports whether the point accepts control commands
func (m AccessMode) CanWrite() bool {
	return m == AccessWrite || m == AccessReadWrite
}

// Point describes one addressable value on a field device.
// Scale and Offset convert the raw wire value into engineering units:
// engineering = raw*Scale + Offset.
type Point struct {
	ID      uint32        `yaml:"id"`
	Name    string        `yaml:"name"`
	Address uint16        `yaml:"address"`
	Type    PointType     `yaml:"type"`
	Space   RegisterSpace `yaml:"space,omitempty"`
	Scale   float64       `yaml:"scale"`
	Offset  float64       `yaml:"offset"`
	Access  AccessMode    `yaml:"access"`
}

// normalize fills in defaulted fields
func (p *Point) normalize() {
	if p.Scale == 0 {
		p.Scale = 1
	}
	if p.Access == "" {
		p.Access = AccessRead
	}
	if p.Space == "" && !p.Type.IsBit() {
		p.Space = SpaceHolding
	}
}
