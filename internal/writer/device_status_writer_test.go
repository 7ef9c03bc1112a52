// internal/writer/device_status_writer_test.go
package writer

import (
	"testing"

	"github.com/tamzrod/a429sched/internal/status"
)

func statusPlan() Plan {
	return Plan{
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   2,
			DeviceName: "DEV-01",
		},
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()

	sw, enabled := NewDeviceStatusWriter(plan, map[string]endpointClient{"status-endpoint": cli})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{Health: status.HealthOK, SchedulerState: status.SchedulerRunning}

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("full block at addr=%d", cli.lastRegsAddr)
	}

	// Verify device name encoding EXACTLY
	expectedNameRegs := encodeDeviceNameRegs(plan.Status.DeviceName)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := first
	second.Health = status.HealthError
	second.LastErrorCode = status.ErrorTransmit

	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	// health and last_error are adjacent: one run of two registers
	if len(cli.lastRegs) != 2 || cli.lastRegsAddr != 2*status.SlotsPerDevice+status.SlotHealthCode {
		t.Fatalf("incremental write addr=%d regs=%v", cli.lastRegsAddr, cli.lastRegs)
	}
}

func TestIncrementalWritesOnlyChangedRuns(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]endpointClient{"status-endpoint": cli})

	s := status.Snapshot{Health: status.HealthOK, Cycles: 1}
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}
	cli.writes = nil

	// unchanged snapshot writes nothing
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cli.writes) != 0 {
		t.Fatalf("unchanged snapshot produced %d writes", len(cli.writes))
	}

	s.Cycles = 2
	s.Warnings = 1
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cli.writes) != 2 {
		t.Fatalf("writes=%+v want two separate runs", cli.writes)
	}
	base := uint16(2 * status.SlotsPerDevice)
	if cli.writes[0].addr != base+status.SlotCycles+1 || cli.writes[1].addr != base+status.SlotWarnings+1 {
		t.Fatalf("writes at %d and %d", cli.writes[0].addr, cli.writes[1].addr)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]endpointClient{"status-endpoint": cli})

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}

	cli.failNext = 1
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatalf("expected failure")
	}

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()
	sw, _ := NewDeviceStatusWriter(plan, map[string]endpointClient{"status-endpoint": cli})

	errSnap := status.Snapshot{Health: status.HealthError, LastErrorCode: 42, SecondsInError: 3}
	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	okSnap := status.Snapshot{Health: status.HealthError, LastErrorCode: 42, SecondsInError: 0}
	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	expectedAddr := plan.Status.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError
	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}
	if len(cli.lastRegs) != 1 || cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: %v", cli.lastRegs)
	}
}

func TestDeviceNameSanitized(t *testing.T) {
	regs := encodeDeviceNameRegs("A\x01BCDEFGHIJKLMNOPQRS")
	if regs[0] != uint16('A')<<8|'?' {
		t.Fatalf("control char not replaced: %04X", regs[0])
	}
	if regs[7] != uint16('N')<<8|'O' {
		t.Fatalf("name not truncated at 16 chars: %04X", regs[7])
	}
}
