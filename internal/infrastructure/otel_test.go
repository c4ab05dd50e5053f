package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/config"
	"fraudscope/internal/shared/testutil"
)

func TestInitializeOTel_MetricsEndpoint(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := NewOTelConfig(config.Default().Telemetry, "test")

	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.MetricsHandler)

	metrics, err := NewPipelineMetrics(providers.Meter, providers.Tracer)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.AddRowsLoaded(ctx, 10)
	metrics.AddColumnsDropped(ctx, 2)
	_, end := metrics.StartStage(ctx, StageLoad)
	end(nil)

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "fraudscope_rows_loaded_total")
	assert.Contains(t, body, "fraudscope_columns_dropped_total")
	assert.Contains(t, body, "fraudscope_stage_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	cfg := &OTelConfig{ServiceName: "fraudscope", TraceExporter: "none"}

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.MetricsHandler)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Tracer)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_Tracing(t *testing.T) {
	cfg := &OTelConfig{ServiceName: "fraudscope", EnableTracing: true, TraceExporter: "stdout", SampleRatio: 1}

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "test")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, errors.New("boom"))
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	cfg := &OTelConfig{ServiceName: "fraudscope", EnableTracing: true, TraceExporter: "otlp"}

	_, err := InitializeOTel(cfg, nil)
	assert.Error(t, err)
}

func TestPipelineMetrics_NilAndNoop(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *PipelineMetrics
	assert.NotPanics(t, func() {
		c, end := nilMetrics.StartStage(ctx, StageTransform)
		end(errors.New("x"))
		assert.Equal(t, ctx, c)
		nilMetrics.AddRowsLoaded(ctx, 1)
		nilMetrics.AddBlanksNormalized(ctx, 1)
		nilMetrics.AddCoercionFailures(ctx, "d", 1)
		nilMetrics.IncReportFailures(ctx)
	})

	noop := NoopPipelineMetrics()
	require.NotNil(t, noop)
	assert.NotPanics(t, func() {
		_, end := noop.StartStage(ctx, StageReport)
		end(errors.New("x"))
		noop.IncReportFailures(ctx)
	})
}
