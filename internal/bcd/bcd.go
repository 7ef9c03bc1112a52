// internal/bcd/bcd.go
package bcd

// FromBinary packs the decimal digits of v into 4-bit nibbles,
// least significant digit in the lowest nibble.
func FromBinary(v uint64) uint64 {
	var out uint64
	for shift := uint(0); v > 0 && shift < 64; shift += 4 {
		out |= (v % 10) << shift
		v /= 10
	}
	return out
}

// ToBinary unpacks nibble-encoded digits.
// Nibbles above 9 are not rejected; they weigh in as their face value.
func ToBinary(b uint64) uint64 {
	var out uint64
	factor := uint64(1)
	for b > 0 {
		out += (b & 0xF) * factor
		factor *= 10
		b >>= 4
	}
	return out
}

// Valid reports whether every nibble is a decimal digit.
func Valid(b uint64) bool {
	for b > 0 {
		if b&0xF > 9 {
			return false
		}
		b >>= 4
	}
	return true
}

// Digits returns how many BCD digits fit in size bits, counting a short
// leading nibble as a digit.
func Digits(size uint8) int {
	return (int(size) + 3) / 4
}
