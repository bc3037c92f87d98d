package frame

import (
	"encoding/binary"

	"fieldbus-engine/pkg/errors"
)

// MBAP header layout constants
const (
	// TCPHeaderSize is the fixed MBAP header length: transaction id,
	// protocol id, length field and unit id.
	TCPHeaderSize = 7

	// tcpProtocolID is always zero for Modbus
	tcpProtocolID = 0
)

// TCPFrame is a parsed TCP-mode (MBAP) frame
type TCPFrame struct {
	TransactionID uint16
	UnitID        byte
	PDU           []byte
}

// BuildTCP wraps a PDU in an MBAP header:
//
//	txid(BE16) || protocol_id(BE16)=0 || length(BE16)=len(pdu)+1 || unit_id || pdu
func BuildTCP(txid uint16, unitID byte, p []byte) []byte {
	adu := make([]byte, TCPHeaderSize+len(p))
	binary.BigEndian.PutUint16(adu[0:2], txid)
	binary.BigEndian.PutUint16(adu[2:4], tcpProtocolID)
	binary.BigEndian.PutUint16(adu[4:6], uint16(len(p)+1))
	adu[6] = unitID
	copy(adu[TCPHeaderSize:], p)
	return adu
}

// ParseTCP unwraps an MBAP frame. The declared length field must match
// the bytes actually present; any short or over-long buffer is a
// protocol error, never a panic or out-of-range slice.
func ParseTCP(buf []byte) (TCPFrame, error) {
	if len(buf) < TCPHeaderSize {
		return TCPFrame{}, errors.Newf("frame.tcp", errors.KindProtocol,
			"frame shorter than MBAP header: %d bytes", len(buf))
	}

	protocolID := binary.BigEndian.Uint16(buf[2:4])
	if protocolID != tcpProtocolID {
		return TCPFrame{}, errors.Newf("frame.tcp", errors.KindProtocol,
			"unexpected protocol id %d", protocolID)
	}

	length := int(binary.BigEndian.Uint16(buf[4:6]))
	if length < 2 {
		return TCPFrame{}, errors.Newf("frame.tcp", errors.KindProtocol,
			"declared length %d cannot hold unit id and function code", length)
	}
	// length counts the unit id plus the PDU
	if len(buf)-6 != length {
		return TCPFrame{}, errors.Newf("frame.tcp", errors.KindProtocol,
			"declared length %d does not match %d remaining bytes", length, len(buf)-6)
	}

	return TCPFrame{
		TransactionID: binary.BigEndian.Uint16(buf[0:2]),
		UnitID:        buf[6],
		PDU:           buf[TCPHeaderSize:],
	}, nil
}

// ExpectedTCPLength reports the total ADU size once enough header bytes
// have arrived to know it. The second return is false while the stream
// has not yet delivered the six length-bearing header bytes.
func ExpectedTCPLength(buf []byte) (int, bool) {
	if len(buf) < 6 {
		return 0, false
	}
	return 6 + int(binary.BigEndian.Uint16(buf[4:6])), true
}
