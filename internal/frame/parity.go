// internal/frame/parity.go
package frame

import "math/bits"

// WithParity sets bit 31 so the frame carries an odd number of ones.
func (f Raw) WithParity() Raw {
	f &^= parityBit
	if bits.OnesCount32(uint32(f))%2 == 0 {
		f |= parityBit
	}
	return f
}

// ParityOK reports whether the frame has odd parity.
func (f Raw) ParityOK() bool {
	return bits.OnesCount32(uint32(f))%2 == 1
}
