// internal/frame/bitfield.go
package frame

import "fmt"

// Field positions are 1-based as in the ARINC429 bit numbering:
// position 9 is bit index 8, the first bit after the label.
const (
	MinLSB       = 9
	MaxFieldSize = 24
	FrameBits    = 32
)

// CheckField validates a data field placement.
func CheckField(lsbPos, size uint8) error {
	if size < 1 || size > MaxFieldSize || lsbPos < MinLSB || int(lsbPos)+int(size) > FrameBits {
		return fmt.Errorf("%w: lsb=%d size=%d", ErrInvalidFieldSpec, lsbPos, size)
	}
	return nil
}

// GetBits extracts size bits starting at lsbPos.
func GetBits(f Raw, lsbPos, size uint8) (uint32, error) {
	if err := CheckField(lsbPos, size); err != nil {
		return 0, err
	}
	return uint32(f>>(lsbPos-1)) & fieldMask(size), nil
}

// SetBits clears the field and writes v into it.
// Bits of v above size are dropped.
func SetBits(f Raw, lsbPos, size uint8, v uint32) (Raw, error) {
	if err := CheckField(lsbPos, size); err != nil {
		return f, err
	}
	shift := lsbPos - 1
	mask := Raw(fieldMask(size)) << shift
	return f&^mask | Raw(v&fieldMask(size))<<shift, nil
}

func fieldMask(size uint8) uint32 {
	return uint32(1)<<size - 1
}
