// internal/observability/metrics.go
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "a429"

var (
	registerOnce sync.Once

	txFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "frames_total",
			Help:      "Frames handed to the transceiver.",
		},
		[]string{"channel", "result"},
	)
	rxEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rx",
			Name:      "events_total",
			Help:      "Receive buffer events by status.",
		},
		[]string{"channel", "status"},
	)
	rxLost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rx",
			Name:      "lost_frames_total",
			Help:      "Frames dropped by the device before they were polled.",
		},
		[]string{"channel"},
	)
	schedulerCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "cycles_total",
			Help:      "Completed schedule cycles (callback jobs).",
		},
		[]string{"channel"},
	)
	schedulerWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "warnings_total",
			Help:      "Job table faults handled at runtime.",
		},
		[]string{"reason"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(txFrames, rxEvents, rxLost, schedulerCycles, schedulerWarnings, httpRequests, httpDuration)
	})
}

func RecordTransmit(channel string, err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	txFrames.WithLabelValues(channel, result).Inc()
}

func RecordRxEvent(channel, status string) {
	RegisterMetrics()
	rxEvents.WithLabelValues(channel, status).Inc()
}

func RecordRxLost(channel string, n uint64) {
	RegisterMetrics()
	rxLost.WithLabelValues(channel).Add(float64(n))
}

func RecordSchedulerCycle(channel string) {
	RegisterMetrics()
	schedulerCycles.WithLabelValues(channel).Inc()
}

func RecordSchedulerWarning(reason string) {
	RegisterMetrics()
	schedulerWarnings.WithLabelValues(reason).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
