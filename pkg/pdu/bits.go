package pdu

// PackBits packs coil/discrete values into the wire bitfield layout:
// bit 0 of the first byte is the first value, LSB-first within each
// byte, unused high bits of the last byte left zero.
func PackBits(values []bool) []byte {
	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	return packed
}

// UnpackBits expands a wire bitfield into count boolean values.
// Bytes beyond the requested count are ignored; missing bytes read as
// false so a short buffer never indexes out of range.
func UnpackBits(data []byte, count int) []bool {
	values := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			break
		}
		values[i] = data[byteIdx]&(1<<(i%8)) != 0
	}
	return values
}
