// internal/frame/ssm.go
package frame

import (
	"fmt"
	"strings"
)

// SSM is the engineering-level sign/status matrix.
// The raw 2-bit code depends on the data format (see internal/codec).
type SSM uint8

const (
	SSMData SSM = iota // bits 29-30 carry data, no status
	SSMNormalOperation
	SSMNoComputedData
	SSMFunctionalTest
	SSMFailureWarning
)

// severity ranks for CombineSSM: FW > NCD > FT > NO > Data.
var ssmRank = [...]uint8{
	SSMData:            0,
	SSMNormalOperation: 1,
	SSMFunctionalTest:  2,
	SSMNoComputedData:  3,
	SSMFailureWarning:  4,
}

func (s SSM) Valid() bool { return s <= SSMFailureWarning }

func (s SSM) String() string {
	switch s {
	case SSMData:
		return "DATA"
	case SSMNormalOperation:
		return "NO"
	case SSMNoComputedData:
		return "NCD"
	case SSMFunctionalTest:
		return "FT"
	case SSMFailureWarning:
		return "FW"
	}
	return fmt.Sprintf("SSM(%d)", uint8(s))
}

// ParseSSM accepts the short names used in config and the HTTP API.
func ParseSSM(s string) (SSM, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DATA":
		return SSMData, nil
	case "", "NO", "NORMAL":
		return SSMNormalOperation, nil
	case "NCD":
		return SSMNoComputedData, nil
	case "FT", "TEST":
		return SSMFunctionalTest, nil
	case "FW", "FAIL":
		return SSMFailureWarning, nil
	}
	return 0, fmt.Errorf("frame: unknown ssm %q", s)
}

// CombineSSM returns the most severe of the given states.
// With no arguments the result is SSMData.
func CombineSSM(states ...SSM) SSM {
	out := SSMData
	for _, s := range states {
		if !s.Valid() {
			continue
		}
		if ssmRank[s] > ssmRank[out] {
			out = s
		}
	}
	return out
}
