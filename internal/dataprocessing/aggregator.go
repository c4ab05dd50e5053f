package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/infrastructure"
	"fraudscope/pkg/contracts/domain"
)

// Output column names added by Aggregate next to the group and target columns
const (
	CountColumn   = "count"
	TotalColumn   = "total"
	PercentColumn = "percent"
)

// AggregateOptions selects the grouping of one Aggregate call
type AggregateOptions struct {
	GroupColumn string
	// TargetColumn defaults to domain.DefaultTargetColumn
	TargetColumn string
	// FilterTrue keeps only rows whose target value is boolean true
	FilterTrue bool
}

// Aggregator computes how target values are distributed inside each group
type Aggregator struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewAggregator creates a new aggregator. metrics may be nil.
func NewAggregator(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger:  logger.With(slog.String("component", "aggregator")),
		metrics: metrics,
	}
}

// Aggregate returns a table with columns [group, target, count, total, percent]
// sorted by percent descending
func (a *Aggregator) Aggregate(ctx context.Context, table *domain.Table, opts AggregateOptions) (*domain.Table, error) {
	rates, err := a.Rates(ctx, table, opts)
	if err != nil {
		return nil, err
	}
	return RatesTable(opts.GroupColumn, targetColumn(opts), rates)
}

// Rates computes one GroupRate per (group, target value) pair.
//
// Rows with a missing group value are skipped. Total is every row of the group.
// Percent is taken over the rows with a target, so the percents of a group
// sum to 100 even when some targets are missing.
// Ties on percent are broken by group then target value, ascending.
func (a *Aggregator) Rates(ctx context.Context, table *domain.Table, opts AggregateOptions) (rates []domain.GroupRate, err error) {
	if table == nil {
		return nil, apperrors.NewAppValidationError("aggregate requires a table")
	}
	target := targetColumn(opts)
	if opts.GroupColumn == "" {
		return nil, apperrors.NewAppValidationError("group column is required")
	}
	if opts.GroupColumn == target {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("group and target must be different columns, both are %q", target))
	}

	groupCol, ok := table.Column(opts.GroupColumn)
	if !ok {
		return nil, apperrors.NewColumnNotFoundError(opts.GroupColumn)
	}
	targetCol, ok := table.Column(target)
	if !ok {
		return nil, apperrors.NewColumnNotFoundError(target)
	}

	if opts.FilterTrue {
		if kind := targetCol.Kind(); kind != domain.KindBool && kind != domain.KindNull {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("filter on true needs a boolean target, column %q is %s", target, kind)).
				WithContext("column", target)
		}
	}

	ctx, end := a.metrics.StartStage(ctx, infrastructure.StageAggregate,
		attribute.String("group", opts.GroupColumn),
		attribute.String("target", target))
	defer func() { end(err) }()

	rates = groupRates(groupCol.Values, targetCol.Values)

	sort.SliceStable(rates, func(i, j int) bool {
		if rates[i].Percent != rates[j].Percent {
			return rates[i].Percent > rates[j].Percent
		}
		if c := rates[i].Group.Compare(rates[j].Group); c != 0 {
			return c < 0
		}
		return rates[i].Target.Compare(rates[j].Target) < 0
	})

	if opts.FilterTrue {
		filtered := rates[:0]
		for _, r := range rates {
			if r.Target.IsTrue() {
				filtered = append(filtered, r)
			}
		}
		rates = filtered
	}

	a.logger.InfoContext(ctx, "group rates calculated",
		slog.String("group", opts.GroupColumn),
		slog.String("target", target),
		slog.Bool("filter_true", opts.FilterTrue),
		slog.Int("rows", len(rates)))

	return rates, nil
}

// groupBucket holds the target counts of one group in first-seen order.
// total counts every row of the group; valid only those with a target.
type groupBucket struct {
	value  domain.Value
	order  []domain.Value
	counts map[string]int
	total  int
	valid  int
}

func groupRates(groups, targets []domain.Value) []domain.GroupRate {
	index := make(map[string]int)
	var buckets []*groupBucket

	for i, g := range groups {
		if g.IsNull() {
			continue
		}

		key := g.Key()
		idx, ok := index[key]
		if !ok {
			idx = len(buckets)
			index[key] = idx
			buckets = append(buckets, &groupBucket{value: g, counts: make(map[string]int)})
		}
		b := buckets[idx]
		b.total++

		t := targets[i]
		if t.IsNull() {
			continue
		}
		tk := t.Key()
		if _, seen := b.counts[tk]; !seen {
			b.order = append(b.order, t)
		}
		b.counts[tk]++
		b.valid++
	}

	var rates []domain.GroupRate
	for _, b := range buckets {
		for _, t := range b.order {
			count := b.counts[t.Key()]
			rates = append(rates, domain.GroupRate{
				Group:   b.value,
				Target:  t,
				Count:   count,
				Total:   b.total,
				Percent: float64(count) / float64(b.valid) * 100,
			})
		}
	}
	return rates
}

// RatesTable lays out rates as a table named after the group and target columns
func RatesTable(groupColumn, targetColumn string, rates []domain.GroupRate) (*domain.Table, error) {
	n := len(rates)
	groups := make([]domain.Value, n)
	targets := make([]domain.Value, n)
	counts := make([]domain.Value, n)
	totals := make([]domain.Value, n)
	percents := make([]domain.Value, n)

	for i, r := range rates {
		groups[i] = r.Group
		targets[i] = r.Target
		counts[i] = domain.IntValue(int64(r.Count))
		totals[i] = domain.IntValue(int64(r.Total))
		percents[i] = domain.FloatValue(r.Percent)
	}

	tbl := domain.NewTableWithRows(n)
	for _, c := range []struct {
		name   string
		values []domain.Value
	}{
		{groupColumn, groups},
		{targetColumn, targets},
		{CountColumn, counts},
		{TotalColumn, totals},
		{PercentColumn, percents},
	} {
		if err := tbl.AddColumn(c.name, c.values); err != nil {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("cannot build rates table: %v", err))
		}
	}
	return tbl, nil
}

func targetColumn(opts AggregateOptions) string {
	if opts.TargetColumn == "" {
		return domain.DefaultTargetColumn
	}
	return opts.TargetColumn
}
