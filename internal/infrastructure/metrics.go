package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Pipeline stages
const (
	StageLoad      = "load"
	StageTransform = "transform"
	StageAggregate = "aggregate"
	StageReport    = "report"
	StageExport    = "export"
)

// PipelineMetrics holds the instruments and tracer used by the data pipeline.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	RowsLoaded           metric.Int64Counter
	ColumnsDropped       metric.Int64Counter
	BlankCellsNormalized metric.Int64Counter
	CoercionFailures     metric.Int64Counter
	ReportFailures       metric.Int64Counter
	StageDuration        metric.Float64Histogram

	tracer trace.Tracer
}

// NewPipelineMetrics creates the pipeline instruments on meter. A nil tracer
// disables spans.
func NewPipelineMetrics(meter metric.Meter, tracer trace.Tracer) (*PipelineMetrics, error) {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(InstrumentationName)
	}

	rowsLoaded, err := meter.Int64Counter(
		"fraudscope_rows_loaded_total",
		metric.WithDescription("Total number of rows read from input files"),
	)
	if err != nil {
		return nil, err
	}

	columnsDropped, err := meter.Int64Counter(
		"fraudscope_columns_dropped_total",
		metric.WithDescription("Total number of sparse columns dropped"),
	)
	if err != nil {
		return nil, err
	}

	blanks, err := meter.Int64Counter(
		"fraudscope_blank_cells_normalized_total",
		metric.WithDescription("Total number of blank string cells turned into missing values"),
	)
	if err != nil {
		return nil, err
	}

	coercion, err := meter.Int64Counter(
		"fraudscope_coercion_failures_total",
		metric.WithDescription("Total number of cells that could not be parsed as datetimes"),
	)
	if err != nil {
		return nil, err
	}

	reportFailures, err := meter.Int64Counter(
		"fraudscope_report_failures_total",
		metric.WithDescription("Total number of profiling reports that failed to generate"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"fraudscope_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:           rowsLoaded,
		ColumnsDropped:       columnsDropped,
		BlankCellsNormalized: blanks,
		CoercionFailures:     coercion,
		ReportFailures:       reportFailures,
		StageDuration:        stageDuration,
		tracer:               tracer,
	}, nil
}

// NoopPipelineMetrics returns metrics backed by no-op instruments
func NoopPipelineMetrics() *PipelineMetrics {
	m, _ := NewPipelineMetrics(metricnoop.NewMeterProvider().Meter(InstrumentationName), nil)
	return m
}

// StartStage opens a span for stage and returns a function that ends it and
// records the stage duration. The error passed to the function, if any, is
// recorded on the span.
func (m *PipelineMetrics) StartStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if m == nil {
		return ctx, func(error) {}
	}

	start := time.Now()
	ctx, span := m.tracer.Start(ctx, "pipeline."+stage, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "failure"
			RecordError(ctx, err)
		}
		m.StageDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("status", status),
		))
		span.End()
	}
}

// AddRowsLoaded counts rows read from a file
func (m *PipelineMetrics) AddRowsLoaded(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsLoaded.Add(ctx, int64(n))
}

// AddColumnsDropped counts dropped sparse columns
func (m *PipelineMetrics) AddColumnsDropped(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ColumnsDropped.Add(ctx, int64(n))
}

// AddBlanksNormalized counts blank cells turned into missing values
func (m *PipelineMetrics) AddBlanksNormalized(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.BlankCellsNormalized.Add(ctx, int64(n))
}

// AddCoercionFailures counts unparseable datetime cells for column
func (m *PipelineMetrics) AddCoercionFailures(ctx context.Context, column string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CoercionFailures.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// IncReportFailures counts a failed report
func (m *PipelineMetrics) IncReportFailures(ctx context.Context) {
	if m == nil {
		return
	}
	m.ReportFailures.Add(ctx, 1)
}
