// internal/codec/ssm_table.go
package codec

import "github.com/tamzrod/a429sched/internal/frame"

// ------------------------------------------------------------
// Raw SSM codes per format. These tables are protocol-locked.
// ------------------------------------------------------------

// encodeSSM maps an engineering SSM to the raw 2-bit code.
// neg selects the BCD minus code for normal operation.
// BCD has no failure-warning code; it is sent as no computed data.
func encodeSSM(f Format, ssm frame.SSM, neg bool) uint8 {
	switch f {
	case FormatBCD:
		switch ssm {
		case frame.SSMNormalOperation:
			if neg {
				return 3
			}
			return 0
		case frame.SSMFunctionalTest:
			return 2
		default:
			return 1
		}

	case FormatBNR:
		switch ssm {
		case frame.SSMNormalOperation:
			return 3
		case frame.SSMNoComputedData:
			return 1
		case frame.SSMFunctionalTest:
			return 2
		default:
			return 0
		}

	default:
		switch ssm {
		case frame.SSMNormalOperation:
			return 0
		case frame.SSMNoComputedData:
			return 1
		case frame.SSMFunctionalTest:
			return 2
		default:
			return 3
		}
	}
}

// decodeSSM is the inverse of encodeSSM. For BCD the second result
// reports the minus code.
func decodeSSM(f Format, raw uint8) (frame.SSM, bool) {
	switch f {
	case FormatBCD:
		switch raw & 0x3 {
		case 0:
			return frame.SSMNormalOperation, false
		case 1:
			return frame.SSMNoComputedData, false
		case 2:
			return frame.SSMFunctionalTest, false
		default:
			return frame.SSMNormalOperation, true
		}

	case FormatBNR:
		switch raw & 0x3 {
		case 0:
			return frame.SSMFailureWarning, false
		case 1:
			return frame.SSMNoComputedData, false
		case 2:
			return frame.SSMFunctionalTest, false
		default:
			return frame.SSMNormalOperation, false
		}

	default:
		switch raw & 0x3 {
		case 0:
			return frame.SSMNormalOperation, false
		case 1:
			return frame.SSMNoComputedData, false
		case 2:
			return frame.SSMFunctionalTest, false
		default:
			return frame.SSMFailureWarning, false
		}
	}
}
