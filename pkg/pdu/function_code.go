package pdu

import "fmt"

// FunctionCode identifies a Modbus operation on the wire.
// The numeric value is the exact byte transmitted in the PDU.
type FunctionCode byte

const (
	FuncReadCoils              FunctionCode = 0x01
	FuncReadDiscreteInputs     FunctionCode = 0x02
	FuncReadHoldingRegisters   FunctionCode = 0x03
	FuncReadInputRegisters     FunctionCode = 0x04
	FuncWriteSingleCoil        FunctionCode = 0x05
	FuncWriteSingleRegister    FunctionCode = 0x06
	FuncWriteMultipleCoils     FunctionCode = 0x0F
	FuncWriteMultipleRegisters FunctionCode = 0x10
)

// exceptionBit is set in the function code byte of exception responses
const exceptionBit = 0x80

// Protocol limits per request (Modbus application protocol v1.1b)
const (
	MaxReadRegisters  = 125
	MaxReadBits       = 2000
	MaxWriteRegisters = 123
	MaxWriteBits      = 1968
)

// IsValid reports whether the code is one of the supported function codes
func (fc FunctionCode) IsValid() bool {
	switch fc {
	case FuncReadCoils, FuncReadDiscreteInputs, FuncReadHoldingRegisters,
		FuncReadInputRegisters, FuncWriteSingleCoil, FuncWriteSingleRegister,
		FuncWriteMultipleCoils, FuncWriteMultipleRegisters:
		return true
	default:
		return false
	}
}

// IsRead reports whether the code is one of the four read functions
func (fc FunctionCode) IsRead() bool {
	return fc >= FuncReadCoils && fc <= FuncReadInputRegisters
}

// IsBitAccess reports whether the code addresses coils or discrete inputs
func (fc FunctionCode) IsBitAccess() bool {
	switch fc {
	case FuncReadCoils, FuncReadDiscreteInputs, FuncWriteSingleCoil, FuncWriteMultipleCoils:
		return true
	default:
		return false
	}
}

// WithException returns the function code byte with the exception bit set
func (fc FunctionCode) WithException() byte {
	return byte(fc) | exceptionBit
}

// IsExceptionByte reports whether a received function code byte marks an
// exception response.
func IsExceptionByte(b byte) bool {
	return b&exceptionBit != 0
}

// String returns the string representation of the function code
func (fc FunctionCode) String() string {
	switch fc {
	case FuncReadCoils:
		return "ReadCoils"
	case FuncReadDiscreteInputs:
		return "ReadDiscreteInputs"
	case FuncReadHoldingRegisters:
		return "ReadHoldingRegisters"
	case FuncReadInputRegisters:
		return "ReadInputRegisters"
	case FuncWriteSingleCoil:
		return "WriteSingleCoil"
	case FuncWriteSingleRegister:
		return "WriteSingleRegister"
	case FuncWriteMultipleCoils:
		return "WriteMultipleCoils"
	case FuncWriteMultipleRegisters:
		return "WriteMultipleRegisters"
	default:
		return fmt.Sprintf("FunctionCode(0x%02X)", byte(fc))
	}
}
