// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/a429sched/internal/config"
	wmodbus "github.com/tamzrod/a429sched/internal/writer/modbus"
)

// BuildPlan converts the status and mirror config into a write Plan.
// Assumes config has already passed validation.
func BuildPlan(c *cfg.Config) Plan {
	var plan Plan

	if c.Status.Enabled {
		plan.Status = &StatusPlan{
			Endpoint:   c.Status.Endpoint,
			UnitID:     c.Status.UnitID,
			BaseSlot:   c.Status.BaseSlot,
			DeviceName: c.Device.Name,
		}
	}
	if c.Mirror.Enabled {
		plan.Mirror = &MirrorPlan{
			Endpoint: c.Mirror.Endpoint,
			UnitID:   c.Mirror.UnitID,
			BaseAddr: c.Mirror.BaseAddr,
		}
	}

	return plan
}

// BuildEndpointClients creates one TCP client per unique endpoint.
func BuildEndpointClients(plan Plan, timeout time.Duration) (map[string]endpointClient, func() error, error) {
	clients := make(map[string]endpointClient)
	var closers []func() error

	for _, endpoint := range plan.Endpoints() {
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
