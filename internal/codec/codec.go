// internal/codec/codec.go
package codec

import (
	"fmt"
	"math"

	"github.com/tamzrod/a429sched/internal/bcd"
	"github.com/tamzrod/a429sched/internal/frame"
)

// ssmLimit is the highest field end (lsb+size) that still leaves
// bits 29-30 to the SSM.
const ssmLimit = 30

// bnrLimit is the highest BNR field end that leaves position 29 (bit 28) to the sign.
const bnrLimit = 29

// Field describes where and how a value lives inside a frame.
type Field struct {
	Format   Format
	LSB      uint8 // 1-based position of the least significant bit
	Size     uint8 // field width in bits
	Min      float64
	Max      float64
	Decimals uint8 // BNR decode rounding
}

// SSMInData reports whether the field overlaps bits 29-30.
// Such fields have no status: SSM is neither written nor read.
func (f Field) SSMInData() bool {
	return int(f.LSB)+int(f.Size) > ssmLimit
}

// Validate checks format, placement and range.
func (f Field) Validate() error {
	if !f.Format.Valid() {
		return fmt.Errorf("%w: format %d", ErrInvalidSpec, f.Format)
	}
	if err := frame.CheckField(f.LSB, f.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if math.IsNaN(f.Min) || math.IsNaN(f.Max) || f.Min > f.Max {
		return fmt.Errorf("%w: range [%v,%v]", ErrInvalidSpec, f.Min, f.Max)
	}
	if f.Format == FormatBNR && f.scale() == 0 {
		return fmt.Errorf("%w: bnr needs a non-zero range", ErrInvalidSpec)
	}
	if f.Format == FormatBNR && int(f.LSB)+int(f.Size) > bnrLimit {
		return fmt.Errorf("%w: bnr field lsb=%d size=%d covers the sign bit", ErrInvalidSpec, f.LSB, f.Size)
	}
	return nil
}

// Resolution is the weight of one BNR least significant bit.
func (f Field) Resolution() float64 {
	if f.Format != FormatBNR {
		return 1
	}
	return f.scale()
}

func (f Field) scale() float64 {
	return math.Max(math.Abs(f.Min), math.Abs(f.Max)) / math.Exp2(float64(f.Size))
}

func (f Field) clip(v float64) float64 {
	return math.Min(math.Max(v, f.Min), f.Max)
}

// Encode writes value and ssm into raw and returns the new frame.
// Label and SDI bits are left alone. Values outside [Min,Max] are clipped.
func Encode(raw frame.Raw, fld Field, value float64, ssm frame.SSM) (frame.Raw, error) {
	if err := fld.Validate(); err != nil {
		return raw, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return raw, ErrInvalidValue
	}
	if !ssm.Valid() {
		return raw, fmt.Errorf("%w: ssm %d", ErrInvalidSpec, ssm)
	}

	value = fld.clip(value)
	fieldMax := uint64(1)<<fld.Size - 1

	var data uint64
	neg := false

	switch fld.Format {
	case FormatBCD:
		v := math.Round(value)
		if v < 0 {
			neg = true
			v = -v
		}
		data = bcd.FromBinary(uint64(v))

	case FormatBNR:
		mag := math.Round(math.Abs(value) / fld.scale())
		if mag > float64(fieldMax) {
			mag = float64(fieldMax)
		}
		data = uint64(mag)
		// -0 stays positive; a set sign bit over a zero field means -full scale.
		if value < 0 && data > 0 {
			neg = true
			data = (uint64(1)<<fld.Size - data) & fieldMax
		}
		raw = raw.WithSign(neg)

	case FormatDiscrete:
		if value < 0 {
			return raw, fmt.Errorf("%w: %v", ErrNegativeNotAllowed, value)
		}
		data = uint64(math.Trunc(value))
	}

	out, err := frame.SetBits(raw, fld.LSB, fld.Size, uint32(data))
	if err != nil {
		return raw, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	if ssm != frame.SSMData && !fld.SSMInData() {
		out = out.WithRawSSM(encodeSSM(fld.Format, ssm, neg))
	}
	return out, nil
}

// Decode reads the value and SSM of fld from raw.
// Fields that overlap bits 29-30 always report SSMData, so a BCD value
// read from such a field is never negative.
func Decode(raw frame.Raw, fld Field) (float64, frame.SSM, error) {
	if err := fld.Validate(); err != nil {
		return 0, frame.SSMData, err
	}

	data, err := frame.GetBits(raw, fld.LSB, fld.Size)
	if err != nil {
		return 0, frame.SSMData, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	ssm := frame.SSMData
	neg := false
	if !fld.SSMInData() {
		ssm, neg = decodeSSM(fld.Format, raw.RawSSM())
	}

	switch fld.Format {
	case FormatBCD:
		v := float64(bcd.ToBinary(uint64(data)))
		if neg {
			v = -v
		}
		return v, ssm, nil

	case FormatBNR:
		mag := uint64(data)
		sign := 1.0
		if raw.Sign() {
			sign = -1
			mag = uint64(1)<<fld.Size - mag
		}
		return roundTo(sign*float64(mag)*fld.scale(), fld.Decimals), ssm, nil

	default:
		return float64(data), ssm, nil
	}
}

func roundTo(v float64, decimals uint8) float64 {
	p := math.Pow10(int(decimals))
	return math.Round(v*p) / p
}
