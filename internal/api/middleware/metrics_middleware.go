package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatTurns counts assistant conversation turns by outcome
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_chat_turns_total",
			Help: "Chat turns handled by the assistant, by outcome",
		},
		[]string{"outcome"},
	)

	// QuotaRejections counts requests blocked by the daily AI limit
	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_quota_rejections_total",
			Help: "Chat requests rejected by the daily quota",
		},
	)

	// SSESubscribers tracks currently open task event streams
	SSESubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "task_event_stream_subscribers",
			Help: "Currently connected task event stream subscribers",
		},
	)
)

// MetricsMiddleware collects metrics for HTTP requests
type MetricsMiddleware struct{}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

// CollectMetrics records duration and counts per route. The route
// template is used rather than the raw path to keep label cardinality
// bounded.
func (m *MetricsMiddleware) CollectMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		requestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, path, status).Inc()
	}
}
