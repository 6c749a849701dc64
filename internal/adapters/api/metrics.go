package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	outcomeOK           = "ok"
	outcomeHTTPError    = "http_error"
	outcomeNonJSON      = "non_json"
	outcomeConnectivity = "connectivity"
	outcomeError        = "error"
)

// Metrics collects client-side request metrics. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is non-nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinefund",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of API requests issued by the client.",
			},
			[]string{"backend", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cinefund",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests issued by the client.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"backend", "method"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(backend Backend, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(backend.String(), method, outcome).Inc()
	m.duration.WithLabelValues(backend.String(), method).Observe(elapsed.Seconds())
}

func outcomeOf(err error) string {
	switch err.(type) {
	case nil:
		return outcomeOK
	case *HTTPError:
		return outcomeHTTPError
	case *NonJSONResponseError:
		return outcomeNonJSON
	case *ConnectivityError:
		return outcomeConnectivity
	default:
		return outcomeError
	}
}
