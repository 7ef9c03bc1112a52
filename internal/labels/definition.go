// internal/labels/definition.go
package labels

import (
	"errors"
	"fmt"

	"github.com/tamzrod/a429sched/internal/codec"
	"github.com/tamzrod/a429sched/internal/frame"
)

var (
	ErrInvalidDefinition = errors.New("labels: invalid definition")
	ErrDuplicateLabel    = errors.New("labels: duplicate label")
	ErrUnknownLabel      = errors.New("labels: unknown label")
)

// Definition is the static description of one transmitted label.
type Definition struct {
	Label     uint8
	Name      string
	RefreshMs uint32
	SDI       frame.SDI
	Format    codec.Format
	LSB       uint8
	Size      uint8
	Min       float64
	Max       float64
	Decimals  uint8
	Default   float64
	Unit      string
}

// Field returns the codec placement of the value.
func (d Definition) Field() codec.Field {
	return codec.Field{
		Format:   d.Format,
		LSB:      d.LSB,
		Size:     d.Size,
		Min:      d.Min,
		Max:      d.Max,
		Decimals: d.Decimals,
	}
}

// Validate rejects definitions that cannot be placed in a frame.
func (d Definition) Validate() error {
	if d.RefreshMs == 0 {
		return fmt.Errorf("%w: label %03o: refresh rate must be > 0", ErrInvalidDefinition, d.Label)
	}
	if !d.SDI.Valid() {
		return fmt.Errorf("%w: label %03o: sdi %d", ErrInvalidDefinition, d.Label, d.SDI)
	}
	if err := d.Field().Validate(); err != nil {
		return fmt.Errorf("%w: label %03o: %v", ErrInvalidDefinition, d.Label, err)
	}
	// an addressed label owns bits 8-9; the value must start above them
	if d.SDI != frame.SDIData && d.LSB < 11 {
		return fmt.Errorf("%w: label %03o: lsb %d overlaps sdi bits", ErrInvalidDefinition, d.Label, d.LSB)
	}
	return nil
}

// Address is the receive-side key of the label: label alone when SDI
// carries data, label plus SDI otherwise.
func (d Definition) Address() uint16 {
	if d.SDI == frame.SDIData {
		return uint16(d.Label)
	}
	return frame.ExtendedLabelOf(d.Label, uint8(d.SDI))
}

// Encode builds a complete frame for value.
func (d Definition) Encode(value float64, ssm frame.SSM) (frame.Raw, error) {
	f, err := frame.Create(int(d.Label), d.SDI)
	if err != nil {
		return 0, err
	}
	return codec.Encode(f, d.Field(), value, ssm)
}

// Decode reads the value back from a frame of this label.
func (d Definition) Decode(f frame.Raw) (float64, frame.SSM, error) {
	if f.Label() != d.Label {
		return 0, frame.SSMData, fmt.Errorf("%w: frame label %03o is not %03o", ErrUnknownLabel, f.Label(), d.Label)
	}
	return codec.Decode(f, d.Field())
}
