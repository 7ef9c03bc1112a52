// cmd/a429sched/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tamzrod/a429sched/internal/api"
	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/bus/loopback"
	busmodbus "github.com/tamzrod/a429sched/internal/bus/modbus"
	"github.com/tamzrod/a429sched/internal/config"
	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/frametable"
	"github.com/tamzrod/a429sched/internal/labels"
	"github.com/tamzrod/a429sched/internal/observability"
	"github.com/tamzrod/a429sched/internal/poller"
	"github.com/tamzrod/a429sched/internal/producer"
	"github.com/tamzrod/a429sched/internal/receiver"
	"github.com/tamzrod/a429sched/internal/recorder"
	"github.com/tamzrod/a429sched/internal/scheduler"
	"github.com/tamzrod/a429sched/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: a429sched <config.yaml|config.toml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	logger := observability.InitLogger("a429sched", observability.LogConfig{
		Level:   cfg.Log.Level,
		NoColor: cfg.Log.NoColor,
		JSON:    cfg.Log.JSON,
	})
	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := bus.NewSystemClock()

	// --------------------
	// Labels + frame slots
	// --------------------

	lt, err := cfg.LabelTable()
	if err != nil {
		logger.Fatal().Err(err).Msg("label table failed")
	}

	initialSSM, _ := frame.ParseSSM(cfg.TX.InitialSSM)
	frames := frametable.New(cfg.Schedule.FrameSlots)

	prod, err := producer.New(lt, frames, producer.Options{
		Interval:   time.Duration(cfg.Producer.IntervalMs) * time.Millisecond,
		InitialSSM: initialSSM,
		Logger:     logger.With().Str("component", "producer").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("producer failed")
	}
	if err := prod.Load(); err != nil {
		logger.Fatal().Err(err).Msg("initial frames failed")
	}
	if cfg.Producer.UTC {
		for l, src := range producer.UTCSources() {
			if _, ok := lt.Lookup(l); ok {
				if err := prod.Attach(l, src); err != nil {
					logger.Warn().Err(err).Uint8("label", l).Msg("utc source not attached")
				}
			}
		}
	}

	// --------------------
	// Device
	// --------------------

	dev := openDevice(cfg, clock, logger)
	defer dev.Close()

	// --------------------
	// Receive side
	// --------------------

	rx := receiver.New(receiver.Config{OnChangeOnly: cfg.RX.OnChangeOnly})
	rxChannels := configureReceive(cfg, lt, rx, logger)

	// --------------------
	// Scheduler
	// --------------------

	var warnings atomic.Uint64
	sched, err := scheduler.New(frames, rx, scheduler.Options{
		MaxJobs:    cfg.Schedule.MaxJobs,
		TickBudget: cfg.Schedule.TickBudget,
		QueueSize:  cfg.Schedule.QueueSize,
		Clock:      clock,
		Logger:     logger.With().Str("component", "scheduler").Logger(),
		OnWarning: func(w scheduler.Warning) {
			warnings.Add(1)
			observability.RecordSchedulerWarning(w.Reason())
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler failed")
	}

	jobs, err := buildJobs(cfg, lt)
	if err != nil {
		logger.Fatal().Err(err).Msg("job table failed")
	}
	if err := sched.LoadJobs(jobs); err != nil {
		logger.Fatal().Err(err).Msg("job table rejected")
	}
	if *cfg.TX.AutoStart {
		sched.Start()
	}

	txCh, _ := bus.ParseChannel(cfg.TX.Channel)
	runner := scheduler.NewRunner(sched, dev, txCh, logger.With().Str("component", "runner").Logger())
	runner.OnCycle = func(a scheduler.Action) {
		logger.Debug().Uint64("cycle", a.Cycle).Str("run_id", a.RunID.String()).Msg("schedule cycle complete")
	}

	// --------------------
	// Modbus memory (status + mirror)
	// --------------------

	plan := writer.BuildPlan(cfg)
	clients, closeWriters, err := writer.BuildEndpointClients(plan, time.Duration(cfg.Status.TimeoutMs)*time.Millisecond)
	if err != nil {
		logger.Fatal().Err(err).Msg("writer clients failed")
	}
	defer closeWriters()

	orch := &orchestrator{
		log:      logger.With().Str("component", "orchestrator").Logger(),
		sched:    sched,
		runner:   runner,
		rx:       rx,
		warnings: &warnings,
	}
	if mw, ok := writer.New(plan, clients); ok {
		orch.mirror = mw
	}
	if sw, ok := writer.NewDeviceStatusWriter(plan, clients); ok {
		orch.statusW = sw
	}

	// --------------------
	// Goroutines
	// --------------------

	var wg sync.WaitGroup
	spawn := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
			logger.Debug().Str("task", name).Msg("stopped")
		}()
	}

	if cfg.Recorder.Path != "" {
		rec, err := recorder.Open(cfg.Recorder.Path, logger.With().Str("component", "recorder").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("recorder failed")
		}
		defer rec.Close()

		recCh := make(chan poller.PollResult, 64)
		orch.recorder = recCh
		spawn("recorder", func() { rec.Run(ctx, recCh) })
	}

	results := make(chan poller.PollResult)
	spawn("orchestrator", func() { orch.run(ctx, results) })

	if len(rxChannels) > 0 {
		p, err := poller.New(poller.Config{
			Channels:    rxChannels,
			Interval:    time.Duration(cfg.RX.IntervalMs) * time.Millisecond,
			FrameBudget: cfg.RX.FrameBudget,
		}, dev, rx, clock)
		if err != nil {
			logger.Fatal().Err(err).Msg("poller failed")
		}
		spawn("poller", func() { p.Run(ctx, results) })
	}

	spawn("producer", func() { prod.Run(ctx) })
	spawn("runner", func() { _ = runner.Run(ctx) })

	if cfg.API.Addr != "" {
		srv, err := api.New(api.Deps{
			Name:        cfg.Device.Name,
			Labels:      lt,
			Producer:    prod,
			Frames:      frames,
			Scheduler:   sched,
			Receiver:    rx,
			Clock:       clock,
			Logger:      logger.With().Str("component", "api").Logger(),
			CORSOrigins: cfg.API.CORSOrigins,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("api failed")
		}
		spawn("api", func() {
			if err := srv.Run(ctx, cfg.API.Addr); err != nil {
				logger.Error().Err(err).Msg("api stopped")
			}
		})
	}

	logger.Info().
		Str("device", cfg.Device.Name).
		Str("driver", cfg.Device.Driver).
		Int("labels", lt.Len()).
		Int("jobs", len(jobs)).
		Bool("running", sched.Running()).
		Msg("a429sched started")

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	wg.Wait()
}

func openDevice(cfg *config.Config, clock bus.Clock, logger zerolog.Logger) bus.Transceiver {
	switch cfg.Device.Driver {
	case "modbus":
		g, err := busmodbus.Dial(busmodbus.Config{
			Endpoint:       cfg.Device.Endpoint,
			UnitID:         cfg.Device.UnitID,
			Timeout:        time.Duration(cfg.Device.TimeoutMs) * time.Millisecond,
			TxBase:         cfg.Device.TxBase,
			RxBase:         cfg.Device.RxBase,
			SoftwareParity: cfg.Device.Parity == "auto",
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("device connect failed")
		}
		return g

	default:
		var loop bus.Channel
		if cfg.Device.Loop != "" {
			loop, _ = bus.ParseChannel(cfg.Device.Loop)
		}
		return loopback.New(clock, loop)
	}
}

// configureReceive applies per-channel timeouts and filters and returns
// the channels to poll.
func configureReceive(cfg *config.Config, lt *labels.Table, rx *receiver.Table, logger zerolog.Logger) []bus.Channel {
	for _, d := range lt.All() {
		if d.SDI == frame.SDIData {
			rx.SetSDIData(d.Label, true)
		}
	}

	var out []bus.Channel
	for _, rc := range cfg.RX.Channels {
		ch, _ := bus.ParseChannel(rc.Channel)
		out = append(out, ch)

		if err := rx.SetTimeout(ch, rc.TimeoutMs); err != nil {
			logger.Fatal().Err(err).Str("channel", ch.String()).Msg("rx timeout failed")
		}
		for _, f := range rc.Filters {
			key, _ := config.ParseAddress(f)
			if err := rx.SetFilter(ch, key); err != nil {
				logger.Fatal().Err(err).Str("channel", ch.String()).Msg("rx filter failed")
			}
		}
		if rc.StandardFilters {
			for _, d := range lt.All() {
				if err := rx.SetFilter(ch, d.Address()); err != nil {
					logger.Fatal().Err(err).Str("channel", ch.String()).Msg("rx filter failed")
				}
			}
		}
	}
	return out
}

func buildJobs(cfg *config.Config, lt *labels.Table) ([]scheduler.Job, error) {
	if cfg.Schedule.Mode == "table" {
		return cfg.Schedule.JobTable()
	}
	return scheduler.BuildGroupSchedule(lt)
}
