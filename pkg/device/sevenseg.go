package device

// segments maps a hex digit to the a..g pattern on uo_out[6:0].
var segments = [16]uint8{
	63, 6, 91, 79, 102, 109, 125, 7,
	127, 111, 119, 124, 57, 94, 121, 113,
}

// SevenSegment returns the segment pattern for the low nibble of v.
func SevenSegment(v uint8) uint8 {
	return segments[v&0xF]
}

// DecodeSevenSegment returns the digit shown by pattern. Bit 7 is ignored.
func DecodeSevenSegment(pattern uint8) (uint8, bool) {
	pattern &= 0x7F
	for digit, seg := range segments {
		if seg == pattern {
			return uint8(digit), true
		}
	}
	return 0, false
}
