package middlewares

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acai_store_http_requests_total",
			Help: "HTTP requests by route template and status code",
		},
		[]string{"method", "route", "status"},
	)

	// Storefront reads are served from Redis in a few milliseconds; checkout waits on a
	// database transaction.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acai_store_http_request_duration_seconds",
			Help:    "HTTP latency by surface (storefront, drafts, admin, ops) and status class",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"surface", "route", "status_class"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acai_store_order_operations_total",
			Help: "Order operations by outcome",
		},
		[]string{"operation", "status"},
	)

	orderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "acai_store_order_value_reais",
			Help:    "Total of placed orders in BRL",
			Buckets: []float64{15, 20, 30, 50, 75, 100, 150, 250},
		},
	)

	quotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acai_store_quotes_total",
			Help: "Line item quotes by outcome",
		},
		[]string{"status"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acai_store_notifications_total",
			Help: "Order notifications by kind and outcome",
		},
		[]string{"kind", "status"},
	)
)

// PrometheusMiddleware counts requests per route template and times them per surface.
// Requests that match no route share one label.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		code := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(code)).Inc()
		httpRequestDuration.WithLabelValues(surfaceOf(route), route, statusClass(code)).
			Observe(time.Since(start).Seconds())
	}
}

// surfaceOf groups routes by who calls them.
func surfaceOf(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/admin"):
		return "admin"
	case strings.HasPrefix(route, "/api/drafts"):
		return "drafts"
	case strings.HasPrefix(route, "/api/"):
		return "storefront"
	default:
		return "ops"
	}
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func RecordOrderOperation(operation string, success bool) {
	orderOperations.WithLabelValues(operation, statusLabel(success)).Inc()
}

// RecordOrderValue observes the total of a placed order.
func RecordOrderValue(total decimal.Decimal) {
	orderValue.Observe(total.InexactFloat64())
}

func RecordQuote(success bool) {
	quotesTotal.WithLabelValues(statusLabel(success)).Inc()
}

func RecordNotification(kind string, success bool) {
	notificationsTotal.WithLabelValues(kind, statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
