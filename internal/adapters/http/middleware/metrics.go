package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts sandbox requests. One value is shared by every listener.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the sandbox HTTP collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinefund_sandbox_http_requests_total",
			Help: "Sandbox HTTP requests by listener, route and status.",
		}, []string{"backend", "method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinefund_sandbox_http_request_duration_seconds",
			Help:    "Sandbox HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Handler records every request served by the named listener
func (m *Metrics) Handler(backend string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requests.WithLabelValues(backend, c.Method(), route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(backend, route).Observe(time.Since(start).Seconds())
		return err
	}
}
