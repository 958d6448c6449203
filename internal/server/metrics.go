package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkamanzi/farepulse/internal/service"
)

const scrapeTimeout = 5 * time.Second

// metrics holds the Prometheus collectors for the dashboard. Each
// server carries its own registry so constructing a second server never
// double-registers.
type metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(store service.Store) *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farepulse_http_requests_total",
			Help: "Total number of HTTP requests served by the dashboard",
		},
		[]string{"method", "endpoint", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farepulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	m.registry.MustRegister(m.requestsTotal)
	m.registry.MustRegister(m.requestDuration)

	// Store gauges are read at scrape time
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "farepulse_records_stored",
			Help: "Raw records currently stored",
		},
		storeCount(store.CountRecords),
	))
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "farepulse_records_classified",
			Help: "Classified records currently stored",
		},
		storeCount(store.CountClassifications),
	))
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "farepulse_flags_open",
			Help: "Misinformation flags awaiting review",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
			defer cancel()
			reviews, err := store.GetOpenFlagReviews(ctx)
			if err != nil {
				return 0
			}
			return float64(len(reviews))
		},
	))

	return m
}

// storeCount adapts a store count method into a gauge function.
func storeCount(count func(context.Context) (int, error)) func() float64 {
	return func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
		defer cancel()
		n, err := count(ctx)
		if err != nil {
			return 0
		}
		return float64(n)
	}
}

// middleware records request counts and latencies per route.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// handler serves the registry in the Prometheus exposition format.
func (m *metrics) handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
