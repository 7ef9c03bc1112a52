// internal/status/encode_test.go
package status

import "testing"

func TestEncode_Layout(t *testing.T) {
	regs := Encode(Snapshot{
		Health:         HealthOK,
		LastErrorCode:  ErrorTransmit,
		SecondsInError: 7,
		SchedulerState: SchedulerRunning,
		PC:             42,
		Cycles:         0x00010002,
		TxFrames:       5,
		Rx1Lost:        0xFFFFFFFF,
		Warnings:       3,
	})

	if len(regs) != SlotsPerDevice {
		t.Fatalf("len=%d want %d", len(regs), SlotsPerDevice)
	}
	if regs[SlotHealthCode] != HealthOK || regs[SlotLastErrorCode] != ErrorTransmit || regs[SlotSecondsInError] != 7 {
		t.Fatalf("head slots: %v", regs[:3])
	}
	if regs[SlotSchedulerState] != SchedulerRunning || regs[SlotProgramCounter] != 42 {
		t.Fatalf("scheduler slots: %v", regs[3:5])
	}
	if regs[SlotCycles] != 1 || regs[SlotCycles+1] != 2 {
		t.Fatalf("cycles: %v", regs[SlotCycles:SlotCycles+2])
	}
	if regs[SlotTxFrames] != 0 || regs[SlotTxFrames+1] != 5 {
		t.Fatalf("tx frames: %v", regs[SlotTxFrames:SlotTxFrames+2])
	}
	if regs[SlotRx1Lost] != 0xFFFF || regs[SlotRx1Lost+1] != 0xFFFF {
		t.Fatalf("rx1 lost: %v", regs[SlotRx1Lost:SlotRx1Lost+2])
	}
	if regs[SlotWarnings+1] != 3 {
		t.Fatalf("warnings: %v", regs[SlotWarnings:SlotWarnings+2])
	}
	for i := SlotDeviceNameStart; i <= SlotDeviceNameEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("name slot %d = %d, want 0", i, regs[i])
		}
	}
}

func TestLayout_NoOverlap(t *testing.T) {
	if SlotWarnings+1 >= SlotReservedStart {
		t.Fatalf("counters run into reserved range")
	}
	if SlotDeviceNameEnd != SlotsPerDevice-1 {
		t.Fatalf("device name must end the block: end=%d size=%d", SlotDeviceNameEnd, SlotsPerDevice)
	}
}

func TestSat32(t *testing.T) {
	if Sat32(5) != 5 {
		t.Fatal("small value changed")
	}
	if Sat32(1<<40) != 0xFFFFFFFF {
		t.Fatal("large value not clamped")
	}
}
