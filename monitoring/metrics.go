// Package monitoring exposes the service's prometheus collectors.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service records to. Collectors are
// registered on the registry passed to New, never on the global one.
type Metrics struct {
	registry *prometheus.Registry

	Transitions   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	RateLimited   *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Order status transition attempts by target status and outcome",
			},
			[]string{"to", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_notifications_total",
				Help: "Generated notifications by recipient role and outcome",
			},
			[]string{"role", "outcome"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	reg.MustRegister(
		m.Transitions,
		m.Notifications,
		m.RateLimited,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// Instrument records request count and latency per matched route.
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
