// internal/frame/sdi.go
package frame

import (
	"fmt"
	"strings"
)

// SDI selects the source/destination identifier of a label.
// SDIData means bits 8-9 belong to the data field.
type SDI uint8

const (
	SDI0 SDI = iota
	SDI1
	SDI2
	SDI3
	SDIData
)

func (s SDI) Valid() bool { return s <= SDIData }

func (s SDI) String() string {
	if s == SDIData {
		return "data"
	}
	if s.Valid() {
		return fmt.Sprintf("%d", uint8(s))
	}
	return fmt.Sprintf("invalid(%d)", uint8(s))
}

// ParseSDI accepts "0".."3" and "data" (empty means data).
func ParseSDI(s string) (SDI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "data":
		return SDIData, nil
	case "0":
		return SDI0, nil
	case "1":
		return SDI1, nil
	case "2":
		return SDI2, nil
	case "3":
		return SDI3, nil
	}
	return 0, fmt.Errorf("%w: sdi %q", ErrInvalidLabelOrSDI, s)
}
