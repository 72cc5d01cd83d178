package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics carries per-request instruments served on /metrics.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partner_crm",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "partner_crm",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Metrics exposes domain-level instruments.
type Metrics struct {
	MilestonesCompleted *prometheus.CounterVec
	CommissionsRecorded *prometheus.CounterVec
	BonusesAwarded      prometheus.Counter
	VendorAssignments   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		MilestonesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partner_crm",
			Name:      "milestones_completed_total",
			Help:      "Milestones completed by milestone key.",
		}, []string{"milestone_key"}),
		CommissionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partner_crm",
			Name:      "commissions_recorded_total",
			Help:      "Commission records created by source.",
		}, []string{"source"}),
		BonusesAwarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "partner_crm",
			Name:      "incentive_bonuses_awarded_total",
			Help:      "Monthly incentive bonuses awarded.",
		}),
		VendorAssignments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "partner_crm",
			Name:      "vendor_assignments_total",
			Help:      "Vendor assignments created or superseded.",
		}),
	}
}

// GinMiddleware records request count and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
