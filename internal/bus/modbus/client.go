// internal/bus/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frame"
)

// Gateway register map.
//
//	holding TxBase+2*(n-1)   : TXn frame hi, lo (write triggers transmit)
//	input   RxBase+4*(n-1)   : RXn pending, frame hi, frame lo, age ms
//
// Reading a pending RX block pops it on the gateway side.
const (
	txRegsPerChannel = 2
	rxRegsPerChannel = 4
)

// registerClient is the subset of modbus.Client the gateway needs.
type registerClient interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
	TxBase   uint16
	RxBase   uint16

	// SoftwareParity sets bit 31 before each write.
	SoftwareParity bool
}

// Gateway is a bus.Transceiver reached through a Modbus TCP gateway.
// One TCP connection; requests are serialized.
type Gateway struct {
	mu      sync.Mutex
	cfg     Config
	handler *modbus.TCPClientHandler
	client  registerClient
}

// Dial connects to the gateway.
func Dial(cfg Config) (*Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("bus modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("bus modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &Gateway{
		cfg:     cfg,
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func newWithClient(cfg Config, c registerClient) *Gateway {
	return &Gateway{cfg: cfg, client: c}
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.handler == nil {
		return nil
	}
	return g.handler.Close()
}

// ---- bus.Transceiver ----

func (g *Gateway) Transmit(ch bus.Channel, f frame.Raw) error {
	if !ch.IsTX() {
		return bus.ErrChannel
	}
	if g.cfg.SoftwareParity {
		f = f.WithParity()
	}

	addr := g.cfg.TxBase + uint16(ch-bus.TX1)*txRegsPerChannel
	payload := packRegisters(splitFrame(f))

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.client.WriteMultipleRegisters(addr, txRegsPerChannel, payload); err != nil {
		return fmt.Errorf("bus modbus: transmit %s addr=%d: %w", ch, addr, err)
	}
	return nil
}

func (g *Gateway) Poll(ch bus.Channel) (bus.Received, bool, error) {
	idx := ch.RXIndex()
	if idx == 0 {
		return bus.Received{}, false, bus.ErrChannel
	}
	addr := g.cfg.RxBase + uint16(idx-1)*rxRegsPerChannel

	g.mu.Lock()
	raw, err := g.client.ReadInputRegisters(addr, rxRegsPerChannel)
	g.mu.Unlock()
	if err != nil {
		return bus.Received{}, false, fmt.Errorf("bus modbus: poll %s addr=%d: %w", ch, addr, err)
	}

	regs := unpackRegisters(raw)
	if len(regs) < rxRegsPerChannel {
		return bus.Received{}, false, fmt.Errorf("bus modbus: short rx block: %d registers", len(regs))
	}
	if regs[0] == 0 {
		return bus.Received{}, false, nil
	}

	f := joinFrame(regs[1], regs[2])
	return bus.Received{
		Channel: ch,
		Label:   f.Label(),
		SDI:     f.SDI(),
		Frame:   f,
		AgeMs:   uint32(regs[3]),
	}, true, nil
}

// ---- helpers (pure geometry) ----

func splitFrame(f frame.Raw) []uint16 {
	return []uint16{uint16(f >> 16), uint16(f)}
}

func joinFrame(hi, lo uint16) frame.Raw {
	return frame.Raw(uint32(hi)<<16 | uint32(lo))
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
