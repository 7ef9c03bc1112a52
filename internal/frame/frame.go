// internal/frame/frame.go
package frame

import "fmt"

// Raw is one packed ARINC429 frame.
//
//	bits 0-7   label (octal on the wire, transmitted MSB first by the device)
//	bits 8-9   SDI
//	bits 10-28 data
//	bits 29-30 SSM
//	bit  31    parity
type Raw uint32

const (
	labelMask    Raw = 0x000000FF
	extLabelMask Raw = 0x000003FF
	sdiShift         = 8
	ssmShift         = 29
	signBit      Raw = 1 << 28
	parityBit    Raw = 1 << 31
)

// MaxLabel is the highest encodable label (0o377).
const MaxLabel = 0xFF

// Create returns a frame carrying only the label and, unless sdi is SDIData,
// the SDI bits. All other bits are zero.
func Create(label int, sdi SDI) (Raw, error) {
	if label < 0 || label > MaxLabel || !sdi.Valid() {
		return 0, fmt.Errorf("%w: label=%d sdi=%d", ErrInvalidLabelOrSDI, label, sdi)
	}
	f := Raw(label)
	if sdi != SDIData {
		f |= Raw(sdi) << sdiShift
	}
	return f, nil
}

// Label returns bits 0-7.
func (f Raw) Label() uint8 { return uint8(f & labelMask) }

// SDI returns bits 8-9 verbatim, whether or not the label uses them as an address.
func (f Raw) SDI() uint8 { return uint8(f>>sdiShift) & 0x3 }

// RawSSM returns bits 29-30.
func (f Raw) RawSSM() uint8 { return uint8(f>>ssmShift) & 0x3 }

// ExtendedLabel returns label and SDI together (bits 0-9).
func (f Raw) ExtendedLabel() uint16 { return uint16(f & extLabelMask) }

// Sign reports whether the BNR sign bit (bit index 28) is set.
func (f Raw) Sign() bool { return f&signBit != 0 }

// String renders the frame the way bus monitors print it.
func (f Raw) String() string {
	return fmt.Sprintf("%03o/%d:%08X", f.Label(), f.SDI(), uint32(f))
}

// WithSign sets or clears the BNR sign bit.
func (f Raw) WithSign(neg bool) Raw {
	if neg {
		return f | signBit
	}
	return f &^ signBit
}

// WithRawSSM replaces bits 29-30.
func (f Raw) WithRawSSM(ssm uint8) Raw {
	return f&^(0x3<<ssmShift) | Raw(ssm&0x3)<<ssmShift
}

// ExtendedLabelOf builds the 10-bit address used by receive buffers and filters.
func ExtendedLabelOf(label uint8, sdi uint8) uint16 {
	return uint16(label) | uint16(sdi&0x3)<<sdiShift
}
