package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a business metric
// matching the given name, partial label pattern, and value. Uses regex to handle
// extra OTel scope labels injected by the Prometheus exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	t.Run("Success_CreateBusinessMetrics", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)
	})
}

func TestBusinessMetrics_Record(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		bm.RecordOperation(ctx, "auth", "login", "success")
		bm.RecordOperation(ctx, "auth", "login", "invalid_credentials")
		bm.RecordDuration(ctx, "auth", "gate_authenticate", 300*time.Microsecond, "revoked")
		bm.RecordDuration(ctx, "auth", "logout", 2*time.Millisecond, "success")
	})
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)
	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "auth", "login", "success")
		noOpMetrics.RecordDuration(context.Background(), "auth", "login", time.Second, "locked")
	})
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	ctx := context.Background()

	bm.RecordOperation(ctx, "auth", "login", "success")
	bm.RecordOperation(ctx, "auth", "login", "success")
	bm.RecordOperation(ctx, "auth", "login", "invalid_credentials")
	bm.RecordOperation(ctx, "auth", "gate_authenticate", "revoked")

	bm.RecordDuration(ctx, "auth", "login", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "auth", "login", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "auth", "gate_authenticate", 400*time.Microsecond, "revoked")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)

	output := w.Body.String()

	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="auth".*operation="login".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="auth".*operation="login".*status="invalid_credentials"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="auth".*operation="gate_authenticate".*status="revoked"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_count`,
		`domain="auth".*operation="login".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_bucket`,
		`operation="gate_authenticate".*status="revoked".*le="0.0005"`,
		`1`,
	)
}
