// internal/codec/format.go
package codec

import (
	"fmt"
	"strings"
)

// Format is the data discipline of a label's value field.
type Format uint8

const (
	FormatBCD Format = iota + 1
	FormatBNR
	FormatDiscrete
)

func (f Format) Valid() bool { return f >= FormatBCD && f <= FormatDiscrete }

func (f Format) String() string {
	switch f {
	case FormatBCD:
		return "bcd"
	case FormatBNR:
		return "bnr"
	case FormatDiscrete:
		return "discrete"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bcd":
		return FormatBCD, nil
	case "bnr":
		return FormatBNR, nil
	case "discrete", "dis", "dsc":
		return FormatDiscrete, nil
	}
	return 0, fmt.Errorf("%w: format %q", ErrInvalidSpec, s)
}
