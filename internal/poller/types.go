// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/a429sched/internal/receiver"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	At time.Time

	// Events holds receive buffer changes in arrival order,
	// timeouts last.
	Events []receiver.Event

	// Lost is the number of frames the device dropped since the last cycle,
	// per channel.
	Lost map[string]uint64

	Err error // non-nil means the poll cycle was cut short
}
