// internal/status/constants.go
package status

// Channel Status Block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per status block.
const SlotsPerDevice = 30

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last raw error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the device has been in error.
const SlotSecondsInError = 2

// SlotSchedulerState holds one of the Scheduler* codes.
const SlotSchedulerState = 3

// SlotProgramCounter holds the index of the next job.
const SlotProgramCounter = 4

// ---- 32-BIT COUNTERS (hi word first) ----

const SlotCycles = 5
const SlotTxFrames = 7
const SlotRx1Processed = 9
const SlotRx1Lost = 11
const SlotRx2Processed = 13
const SlotRx2Lost = 15
const SlotWarnings = 17

// ---- RESERVED RANGE ----

// Slots 19-21 are reserved for future use.
const SlotReservedStart = 19
const SlotReservedEnd = 21

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 22

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device error state.
const HealthError uint16 = 2

// HealthStale represents a running device whose receive side has timed out.
const HealthStale uint16 = 3

// HealthDisabled represents a stopped scheduler.
const HealthDisabled uint16 = 4

// ---- ERROR CODES ----

const ErrorNone uint16 = 0
const ErrorTransmit uint16 = 1
const ErrorReceive uint16 = 2

// ---- SCHEDULER STATES ----

const SchedulerIdle uint16 = 0
const SchedulerRunning uint16 = 1
