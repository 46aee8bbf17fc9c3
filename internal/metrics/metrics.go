package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	OccurrencesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occurrences_generated_total",
		Help: "Occurrence rows inserted by the generator",
	})
	OccurrencesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occurrences_deleted_total",
			Help: "Occurrence rows removed, by reason",
		},
		[]string{"reason"},
	)
	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Reminder deliveries by result",
		},
		[]string{"result"},
	)
	ReminderPassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reminder_pass_duration_seconds",
		Help:    "Duration of one reminder dispatch pass",
		Buckets: prometheus.DefBuckets,
	})
)

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
