// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	SchedulerState uint16
	PC             uint16

	Cycles       uint32
	TxFrames     uint32
	Rx1Processed uint32
	Rx1Lost      uint32
	Rx2Processed uint32
	Rx2Lost      uint32
	Warnings     uint32
}
