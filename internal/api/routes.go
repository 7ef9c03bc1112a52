// internal/api/routes.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/config"
	"github.com/tamzrod/a429sched/internal/frame"
	"github.com/tamzrod/a429sched/internal/frametable"
	"github.com/tamzrod/a429sched/internal/labels"
	"github.com/tamzrod/a429sched/internal/scheduler"
)

func (s *Server) registerRoutes() {
	r := s.router

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/labels", s.listLabels)
	r.GET("/labels/:label", s.getLabel)
	r.PUT("/labels/:label", s.putLabel)
	r.POST("/labels/:label/mute", s.setMode(frametable.ModeMute))
	r.POST("/labels/:label/transmit", s.setMode(frametable.ModeTransmit))

	r.POST("/tx/direct", s.txDirect)

	r.GET("/schedule", s.getSchedule)
	r.PUT("/schedule/:index", s.putJob)
	r.POST("/schedule/start", s.startSchedule)
	r.POST("/schedule/stop", s.stopSchedule)

	r.GET("/rx/:channel/:key", s.getRx)
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// ------------------------------------------------------------
// health
// ------------------------------------------------------------

func (s *Server) health(c *gin.Context) {
	sch := s.d.Scheduler
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.d.Name,
		"uptime":  time.Since(s.started).String(),
		"running": sch.Running(),
		"pc":      sch.PC(),
		"cycles":  sch.Cycles(),
	})
}

// ------------------------------------------------------------
// labels
// ------------------------------------------------------------

func (s *Server) lookupLabel(c *gin.Context) (labels.Definition, bool) {
	l, err := config.ParseLabel(c.Param("label"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return labels.Definition{}, false
	}
	d, ok := s.d.Labels.Lookup(l)
	if !ok {
		fail(c, http.StatusNotFound, labels.ErrUnknownLabel)
		return labels.Definition{}, false
	}
	return d, true
}

func (s *Server) listLabels(c *gin.Context) {
	defs := s.d.Labels.All()
	out := make([]labelView, 0, len(defs))
	for _, d := range defs {
		out = append(out, s.labelView(d))
	}
	c.JSON(http.StatusOK, gin.H{"labels": out})
}

func (s *Server) getLabel(c *gin.Context) {
	d, ok := s.lookupLabel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.labelView(d))
}

func (s *Server) putLabel(c *gin.Context) {
	d, ok := s.lookupLabel(c)
	if !ok {
		return
	}

	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	_, cur, _ := s.d.Producer.Value(d.Label)
	ssm := cur
	if req.SSM != "" {
		parsed, err := frame.ParseSSM(req.SSM)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		ssm = parsed
	}

	if _, err := s.d.Producer.Apply(d.Label, *req.Value, ssm); err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, s.labelView(d))
}

func (s *Server) setMode(m frametable.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, ok := s.lookupLabel(c)
		if !ok {
			return
		}
		if err := s.d.Frames.SetMode(uint16(d.Label), m); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, s.labelView(d))
	}
}

// ------------------------------------------------------------
// transmit
// ------------------------------------------------------------

func parseFrame(s string) (frame.Raw, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, errors.New("api: frame must be 32-bit hex")
	}
	return frame.Raw(v), nil
}

func (s *Server) txDirect(c *gin.Context) {
	var req directRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	f, err := parseFrame(req.Frame)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.d.Scheduler.Enqueue(f); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		fail(c, status, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "frame": f.String()})
}

// ------------------------------------------------------------
// schedule
// ------------------------------------------------------------

func (s *Server) getSchedule(c *gin.Context) {
	sch := s.d.Scheduler
	jobs := sch.Jobs()
	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		if j.Kind == scheduler.KindSkip {
			continue
		}
		out = append(out, newJobView(j))
	}
	caps := sch.Capabilities()
	c.JSON(http.StatusOK, gin.H{
		"running":     sch.Running(),
		"pc":          sch.PC(),
		"cycles":      sch.Cycles(),
		"total_jobs":  caps.TotalJobs,
		"used_jobs":   caps.UsedJobs,
		"frame_slots": caps.FrameSlots,
		"queue_size":  caps.QueueSize,
		"jobs":        out,
	})
}

func (s *Server) putJob(c *gin.Context) {
	idx, err := strconv.ParseUint(c.Param("index"), 10, 16)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	k, err := scheduler.ParseKind(req.Job)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	j := scheduler.Job{Index: uint16(idx), Kind: k, FrameRef: req.Ref, DwellMs: req.DwellMs}
	if err := s.d.Scheduler.SetEntry(j); err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, newJobView(j))
}

func (s *Server) startSchedule(c *gin.Context) {
	id := s.d.Scheduler.Start()
	c.JSON(http.StatusOK, gin.H{"status": "running", "run_id": id.String()})
}

func (s *Server) stopSchedule(c *gin.Context) {
	s.d.Scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopping"})
}

// ------------------------------------------------------------
// receive buffers
// ------------------------------------------------------------

// getRx serves /rx/:channel/:key where key is "label" or "label-sdi"
// (octal label; a slash cannot appear in a path segment).
func (s *Server) getRx(c *gin.Context) {
	ch, err := bus.ParseChannel(c.Param("channel"))
	if err != nil || !ch.IsRX() {
		fail(c, http.StatusBadRequest, errors.New("api: channel must be rx1 or rx2"))
		return
	}
	key, err := config.ParseAddress(strings.Replace(c.Param("key"), "-", "/", 1))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	e, ok, err := s.d.Receiver.Read(ch, key, s.d.Clock.NowMs())
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing received", "channel": ch.String(), "key": key})
		return
	}
	_, live := s.d.Receiver.Lookup(ch, key, s.d.Clock.NowMs())
	c.JSON(http.StatusOK, gin.H{
		"channel": ch.String(),
		"key":     key,
		"frame":   e.Frame.String(),
		"raw":     uint32(e.Frame),
		"age_ms":  e.AgeMs,
		"live":    live,
	})
}
