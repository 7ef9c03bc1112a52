// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tamzrod/a429sched/internal/bus"
	"github.com/tamzrod/a429sched/internal/frametable"
	"github.com/tamzrod/a429sched/internal/labels"
	"github.com/tamzrod/a429sched/internal/observability"
	"github.com/tamzrod/a429sched/internal/producer"
	"github.com/tamzrod/a429sched/internal/receiver"
	"github.com/tamzrod/a429sched/internal/scheduler"
)

// Deps are the live components the API reads and drives.
type Deps struct {
	Name      string
	Labels    *labels.Table
	Producer  *producer.Producer
	Frames    *frametable.Table
	Scheduler *scheduler.Scheduler
	Receiver  *receiver.Table
	Clock     bus.Clock
	Logger    zerolog.Logger

	CORSOrigins []string
}

// Server is the admin HTTP surface.
type Server struct {
	d       Deps
	router  *gin.Engine
	started time.Time
}

func New(d Deps) (*Server, error) {
	if d.Labels == nil || d.Producer == nil || d.Frames == nil || d.Scheduler == nil || d.Receiver == nil {
		return nil, errors.New("api: missing dependency")
	}
	if d.Clock == nil {
		d.Clock = bus.NewSystemClock()
	}

	observability.RegisterMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(d.Logger))
	r.Use(observability.RequestMetrics())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: d.CORSOrigins,
			AllowMethods: []string{"GET", "PUT", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{d: d, router: r, started: time.Now()}
	s.registerRoutes()
	return s, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.d.Logger.Info().Str("addr", addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	}
}
