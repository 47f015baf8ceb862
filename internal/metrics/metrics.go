// Package metrics exposes draw and HTTP counters in the Prometheus text format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abrezinsky/luckydraw/internal/models"
)

const namespace = "luckydraw"

// Metrics holds the collectors of one application instance
type Metrics struct {
	registry *prometheus.Registry

	prizesDrawn       *prometheus.CounterVec
	numbersDrawn      prometheus.Counter
	sessionsCompleted prometheus.Counter
	saveFailures      prometheus.Counter
	resets            prometheus.Counter
	sessionDuration   prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		prizesDrawn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "draw",
				Name:      "prizes_total",
				Help:      "Prizes drawn, by prize id.",
			},
			[]string{"prize"},
		),
		numbersDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "numbers_total",
			Help:      "Winning numbers generated.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "sessions_completed_total",
			Help:      "Draw sessions that went through the whole catalog.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "save_failures_total",
			Help:      "Completed sessions that could not be stored.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "resets_total",
			Help:      "Draw resets.",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "session_duration_seconds",
			Help:      "Wall time from start to completion of a session.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5min
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.prizesDrawn,
		m.numbersDrawn,
		m.sessionsCompleted,
		m.saveFailures,
		m.resets,
		m.sessionDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// RegisterGauge adds a gauge whose value is read from fn at scrape time
func (m *Metrics) RegisterGauge(subsystem, name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn))
}

// OnDrawEvent counts runner events
func (m *Metrics) OnDrawEvent(event models.DrawEvent) {
	switch event.Type {
	case models.EventCompleted:
		if event.Prize != nil {
			m.prizesDrawn.WithLabelValues(event.Prize.ID).Inc()
		}
		if event.Result != nil {
			m.numbersDrawn.Add(float64(len(event.Result.Numbers)))
		}
	case models.EventSessionCompleted:
		m.sessionsCompleted.Inc()
		if event.Session != nil {
			m.sessionDuration.Observe(event.Session.Duration().Seconds())
		}
	case models.EventSaveFailed:
		m.saveFailures.Inc()
	case models.EventReset:
		m.resets.Inc()
	}
}

// Handler serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations labelled by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
