// internal/status/encode.go
package status

// Encode converts a Snapshot into the live part of a status block.
// The device name slots are left zero; the writer owns them.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotSchedulerState] = s.SchedulerState
	regs[SlotProgramCounter] = s.PC

	put32(regs, SlotCycles, s.Cycles)
	put32(regs, SlotTxFrames, s.TxFrames)
	put32(regs, SlotRx1Processed, s.Rx1Processed)
	put32(regs, SlotRx1Lost, s.Rx1Lost)
	put32(regs, SlotRx2Processed, s.Rx2Processed)
	put32(regs, SlotRx2Lost, s.Rx2Lost)
	put32(regs, SlotWarnings, s.Warnings)

	return regs
}

func put32(regs []uint16, slot int, v uint32) {
	regs[slot] = uint16(v >> 16)
	regs[slot+1] = uint16(v)
}

// Sat32 clamps a 64-bit counter into a 32-bit register pair.
func Sat32(v uint64) uint32 {
	if v > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(v)
}
