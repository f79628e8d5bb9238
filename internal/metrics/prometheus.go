package metrics

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var ShopifyGraphQLDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "shopify_graphql_duration_seconds",
		Help:    "Duration of Shopify Admin GraphQL calls in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

var ShopifyGraphQLFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shopify_graphql_failures_total",
		Help: "Total number of failed Shopify Admin GraphQL calls",
	},
	[]string{"operation"},
)

var NotificationsAttemptedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_attempted_total",
		Help: "Total number of order comment emails attempted",
	},
	[]string{"status"},
)

var OrderMirrorWritesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_mirror_writes_total",
		Help: "Order mirror insert attempts by result",
	},
	[]string{"result"},
)

func Init() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(ShopifyGraphQLDuration)
	prometheus.MustRegister(ShopifyGraphQLFailuresTotal)
	prometheus.MustRegister(NotificationsAttemptedTotal)
	prometheus.MustRegister(OrderMirrorWritesTotal)
}

func GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		duration := time.Since(start).Seconds()
		endpoint := ctx.FullPath()
		method := ctx.Request.Method
		statusCode := ctx.Writer.Status()
		status := fmt.Sprintf("%d", statusCode)
		HttpRequestsTotal.WithLabelValues(endpoint, status, method).Inc()
		HttpRequestDuration.WithLabelValues(endpoint, method).Observe(duration)
		if statusCode >= 400 && statusCode < 600 {
			HttpErrorsTotal.WithLabelValues(endpoint, status, method).Inc()
		}
	}
}
