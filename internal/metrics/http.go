package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
	inFlight       metric.Int64UpDownCounter
}

// HTTPMetricsMiddleware returns a Gin middleware recording request counts, durations and
// in-flight requests. Paths are reported as route patterns to bound cardinality.
// If an instrument cannot be created the middleware does nothing.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	m, err := newHTTPMetrics(meterProvider, namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.inFlight.Add(ctx, 1)

		c.Next()

		m.inFlight.Add(ctx, -1)
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", sanitizePath(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		m.requestCounter.Add(ctx, 1, attrs)
		m.durationHisto.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func newHTTPMetrics(meterProvider metric.MeterProvider, namespace string) (*httpMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		instrumentName(namespace, "http_requests_total"),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHisto, err := meter.Float64Histogram(
		instrumentName(namespace, "http_request_duration_seconds"),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		instrumentName(namespace, "http_requests_in_flight"),
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
		inFlight:       inFlight,
	}, nil
}

// sanitizePath returns the matched route pattern, or "unknown" for unmatched requests.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
