package crc

// Checksum calculates the Modbus CRC16 over data.
// Polynomial 0xA001 (reflected 0x8005), initial register 0xFFFF.
func Checksum(data []byte) uint16 {
	crc := uint16(0xFFFF)

	for _, b := range data {
		crc ^= uint16(b)

		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc >>= 1
				crc ^= 0xA001
			} else {
				crc >>= 1
			}
		}
	}

	return crc
}

// Append appends the CRC16 of data to a copy of data.
// The checksum is appended little-endian (low byte first) as the wire
// format requires.
func Append(data []byte) []byte {
	crc := Checksum(data)

	result := make([]byte, len(data)+2)
	copy(result, data)
	Put(result[len(data):], crc)
	return result
}

// Put writes crc little-endian into the first two bytes of buf.
func Put(buf []byte, crc uint16) {
	buf[0] = byte(crc & 0xFF)
	buf[1] = byte(crc >> 8)
}

// Verify checks the trailing CRC16 of a received frame.
// The last two bytes of data must hold the little-endian checksum of
// everything before them.
func Verify(data []byte) bool {
	if len(data) < 4 {
		return false
	}

	calculated := Checksum(data[:len(data)-2])
	received := uint16(data[len(data)-2]) | uint16(data[len(data)-1])<<8

	return calculated == received
}
