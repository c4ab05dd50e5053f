package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.opentelemetry.io/otel/attribute"

	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/infrastructure"
	"fraudscope/pkg/contracts/domain"
)

// DefaultSparseThreshold is the non-missing fraction at or below which a
// column counts as sparse
const DefaultSparseThreshold = 0.10

// CoercionPolicy decides what happens to cells that cannot be parsed as datetimes
type CoercionPolicy string

const (
	// CoercionStrict fails the whole transform on the first bad cell
	CoercionStrict CoercionPolicy = "strict"
	// CoercionNullify replaces bad cells with the missing marker
	CoercionNullify CoercionPolicy = "nullify"
)

// ParseCoercionPolicy converts a config string to a policy
func ParseCoercionPolicy(s string) (CoercionPolicy, error) {
	switch CoercionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CoercionStrict, "":
		return CoercionStrict, nil
	case CoercionNullify:
		return CoercionNullify, nil
	default:
		return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown coercion policy %q", s))
	}
}

// TransformOptions selects the cleaning steps of one Transform call
type TransformOptions struct {
	// DateColumns are coerced to datetimes, in order
	DateColumns []string
	// DropSparse removes columns whose non-missing fraction is at or below
	// the sparse threshold
	DropSparse bool
}

// TransformerConfig holds configuration options for the Transformer
type TransformerConfig struct {
	SparseThreshold float64
	CoercionPolicy  CoercionPolicy
	// Location is used for datetimes without a zone; defaults to UTC
	Location *time.Location
}

// DefaultTransformerConfig returns the standard cleaning configuration
func DefaultTransformerConfig() TransformerConfig {
	return TransformerConfig{
		SparseThreshold: DefaultSparseThreshold,
		CoercionPolicy:  CoercionStrict,
		Location:        time.UTC,
	}
}

// TransformStats describes what a Transform call changed
type TransformStats struct {
	Rows             int      `json:"rows"`
	ColumnsIn        int      `json:"columns_in"`
	ColumnsOut       int      `json:"columns_out"`
	DroppedColumns   []string `json:"dropped_columns"`
	CoercedColumns   []string `json:"coerced_columns"`
	BlanksNormalized int      `json:"blanks_normalized"`
	CoercionFailures int      `json:"coercion_failures"`
}

// Transformer cleans raw tables: datetime coercion, then blank normalization,
// then sparse column removal. It never modifies its input table.
type Transformer struct {
	logger  *slog.Logger
	config  TransformerConfig
	metrics *infrastructure.PipelineMetrics
}

// NewTransformer creates a new transformer. metrics may be nil.
func NewTransformer(logger *slog.Logger, cfg TransformerConfig, metrics *infrastructure.PipelineMetrics) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CoercionPolicy == "" {
		cfg.CoercionPolicy = CoercionStrict
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Transformer{
		logger:  logger.With(slog.String("component", "transformer")),
		config:  cfg,
		metrics: metrics,
	}
}

// Transform returns a cleaned copy of table
func (t *Transformer) Transform(ctx context.Context, table *domain.Table, opts TransformOptions) (*domain.Table, error) {
	out, _, err := t.TransformWithStats(ctx, table, opts)
	return out, err
}

// TransformWithStats is Transform that also reports what changed
func (t *Transformer) TransformWithStats(ctx context.Context, table *domain.Table, opts TransformOptions) (out *domain.Table, stats TransformStats, err error) {
	if table == nil {
		return nil, stats, apperrors.NewAppValidationError("transform requires a table")
	}

	ctx, end := t.metrics.StartStage(ctx, infrastructure.StageTransform,
		attribute.Int("rows", table.NumRows()),
		attribute.Int("columns", table.NumColumns()))
	defer func() { end(err) }()

	t.logger.InfoContext(ctx, "transforming data",
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))

	stats.Rows = table.NumRows()
	stats.ColumnsIn = table.NumColumns()

	out = table.Clone()

	if len(opts.DateColumns) > 0 {
		t.logger.InfoContext(ctx, "coercing columns to datetime format", slog.Any("columns", opts.DateColumns))
		for _, name := range opts.DateColumns {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
			failures, err := t.coerceDates(ctx, out, name)
			if err != nil {
				return nil, stats, err
			}
			stats.CoercedColumns = append(stats.CoercedColumns, name)
			stats.CoercionFailures += failures
		}
	}

	t.logger.DebugContext(ctx, "replacing blanks with missing values")
	stats.BlanksNormalized = normalizeBlanks(out)
	t.metrics.AddBlanksNormalized(ctx, stats.BlanksNormalized)

	if opts.DropSparse {
		stats.DroppedColumns = sparseColumns(out, t.config.SparseThreshold)
		if len(stats.DroppedColumns) > 0 {
			out = out.Drop(stats.DroppedColumns...)
		}
		t.metrics.AddColumnsDropped(ctx, len(stats.DroppedColumns))
		t.logger.InfoContext(ctx, "sparse columns dropped",
			slog.Any("dropped", stats.DroppedColumns),
			slog.Any("remaining", out.ColumnNames()),
			slog.Float64("threshold", t.config.SparseThreshold))
	}

	stats.ColumnsOut = out.NumColumns()

	t.logger.InfoContext(ctx, "returning transformed table",
		slog.Int("rows", out.NumRows()),
		slog.Int("columns", out.NumColumns()),
		slog.Int("blanks_normalized", stats.BlanksNormalized),
		slog.Int("coercion_failures", stats.CoercionFailures))

	return out, stats, nil
}

// coerceDates replaces the named column of tbl with its parsed values and
// returns how many cells were nullified
func (t *Transformer) coerceDates(ctx context.Context, tbl *domain.Table, name string) (int, error) {
	col, ok := tbl.Column(name)
	if !ok {
		return 0, apperrors.NewColumnNotFoundError(name)
	}

	failures := 0
	coerced := make([]domain.Value, len(col.Values))
	for i, v := range col.Values {
		parsed, err := t.parseDate(v)
		if err == nil {
			coerced[i] = parsed
			continue
		}
		if t.config.CoercionPolicy == CoercionStrict {
			return 0, apperrors.NewTypeCoercionError(name, i, v.String(), err)
		}
		coerced[i] = domain.Null()
		failures++
	}
	if err := tbl.SetColumn(name, coerced); err != nil {
		return 0, fmt.Errorf("replace column %s: %w", name, err)
	}

	if failures > 0 {
		t.logger.WarnContext(ctx, "unparseable datetime cells replaced with missing values",
			slog.String("column", name),
			slog.Int("failures", failures))
		t.metrics.AddCoercionFailures(ctx, name, failures)
	}
	return failures, nil
}

// parseDate converts one cell to a datetime. Missing and blank cells stay
// missing; existing datetimes pass through.
func (t *Transformer) parseDate(v domain.Value) (domain.Value, error) {
	switch v.Kind() {
	case domain.KindNull, domain.KindTime:
		return v, nil
	case domain.KindString:
		if v.IsBlank() {
			return domain.Null(), nil
		}
		s, _ := v.Str()
		ts, err := dateparse.ParseIn(strings.TrimSpace(s), t.config.Location)
		if err != nil {
			return domain.Null(), err
		}
		return domain.TimeValue(ts), nil
	default:
		return domain.Null(), fmt.Errorf("cannot interpret %s value as a datetime", v.Kind())
	}
}

// normalizeBlanks replaces empty and whitespace-only strings with the missing
// marker in place and returns how many cells changed
func normalizeBlanks(tbl *domain.Table) int {
	n := 0
	for _, col := range tbl.Columns() {
		for i, v := range col.Values {
			if v.IsBlank() {
				col.Values[i] = domain.Null()
				n++
			}
		}
	}
	return n
}

// sparseColumns lists the columns whose non-missing fraction is at or below
// threshold. With zero rows every column qualifies.
func sparseColumns(tbl *domain.Table, threshold float64) []string {
	var names []string
	rows := tbl.NumRows()
	for _, col := range tbl.Columns() {
		fraction := 0.0
		if rows > 0 {
			fraction = float64(col.NonMissing()) / float64(rows)
		}
		if fraction <= threshold {
			names = append(names, col.Name)
		}
	}
	return names
}
