package jtag

// Bit vectors travel LSB first: bit i of a vector is bit i%8 of byte i/8.

// PackBits packs bools into bytes.
func PackBits(bits []bool) []byte {
	if len(bits) == 0 {
		return nil
	}
	buf := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			buf[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return buf
}

// UnpackBits expands n bits of buf. Missing bytes read as zero.
func UnpackBits(buf []byte, n int) []bool {
	if n <= 0 {
		return nil
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = bitAt(buf, i)
	}
	return out
}

// Uint64Bits returns the low n bits of v, LSB first.
func Uint64Bits(v uint64, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = i < 64 && v>>uint(i)&1 != 0
	}
	return out
}

// BitsUint64 folds up to 64 bits into an integer.
func BitsUint64(bits []bool) uint64 {
	var v uint64
	for i, bit := range bits {
		if bit && i < 64 {
			v |= 1 << uint(i)
		}
	}
	return v
}

func bitAt(buf []byte, i int) bool {
	if i/8 >= len(buf) {
		return false
	}
	return buf[i/8]&(1<<(uint(i)%8)) != 0
}
