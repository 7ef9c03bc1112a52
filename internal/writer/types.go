// internal/writer/types.go
package writer

import "github.com/tamzrod/a429sched/internal/poller"

// StatusPlan places the channel status block in remote register memory.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// MirrorPlan places the receive mirror in remote register memory.
// Each receive channel owns 2*receiver.Keys registers from BaseAddr.
type MirrorPlan struct {
	Endpoint string
	UnitID   uint8
	BaseAddr uint16
}

// Plan is the fully-built write plan. Nil members are disabled.
type Plan struct {
	Status *StatusPlan
	Mirror *MirrorPlan
}

// Endpoints returns the distinct endpoints the plan writes to.
func (p Plan) Endpoints() []string {
	var out []string
	if p.Status != nil {
		out = append(out, p.Status.Endpoint)
	}
	if p.Mirror != nil && (p.Status == nil || p.Mirror.Endpoint != p.Status.Endpoint) {
		out = append(out, p.Mirror.Endpoint)
	}
	return out
}

// Writer writes poll results into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
