package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/shared/testutil"
	"fraudscope/pkg/contracts/domain"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewAggregator(logger, nil)
}

func TestAggregator_RegionScenario(t *testing.T) {
	agg := newTestAggregator(t)

	rates, err := agg.Rates(context.Background(), testutil.RegionFraudTable(t), AggregateOptions{GroupColumn: "region"})
	require.NoError(t, err)
	require.Len(t, rates, 4)

	want := []struct {
		group   string
		target  bool
		count   int
		total   int
		percent float64
	}{
		{"A", false, 5, 6, 83.333333},
		{"B", false, 2, 4, 50},
		{"B", true, 2, 4, 50},
		{"A", true, 1, 6, 16.666667},
	}

	for i, w := range want {
		assert.Equal(t, w.group, rates[i].Group.String(), "row %d", i)
		assert.Equal(t, domain.BoolValue(w.target), rates[i].Target, "row %d", i)
		assert.Equal(t, w.count, rates[i].Count, "row %d", i)
		assert.Equal(t, w.total, rates[i].Total, "row %d", i)
		assert.InDelta(t, w.percent, rates[i].Percent, 1e-5, "row %d", i)
	}
}

func TestAggregator_PercentsSumToHundred(t *testing.T) {
	agg := newTestAggregator(t)
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"merchant": testutil.Strings("uber", "uber", "lyft", "lyft", "lyft", "amc", "uber"),
		"isFraud": {
			domain.BoolValue(true), domain.BoolValue(false), domain.BoolValue(false),
			domain.BoolValue(false), domain.Null(), domain.BoolValue(true), domain.BoolValue(false),
		},
	}, "merchant", "isFraud")

	rates, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "merchant"})
	require.NoError(t, err)

	sums := map[string]float64{}
	totals := map[string]int{}
	for _, r := range rates {
		sums[r.Group.String()] += r.Percent
		totals[r.Group.String()] = r.Total
	}
	for group, sum := range sums {
		assert.InDelta(t, 100, sum, 1e-6, group)
	}
	assert.Equal(t, 3, totals["lyft"], "rows with a missing target still count towards the total")
}

func TestAggregator_TotalCountsMissingTargets(t *testing.T) {
	agg := newTestAggregator(t)
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"region": testutil.Strings("A", "A", "A", "A"),
		"isFraud": {
			domain.BoolValue(true), domain.BoolValue(false), domain.BoolValue(false), domain.Null(),
		},
	}, "region", "isFraud")

	rates, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "region"})
	require.NoError(t, err)
	require.Len(t, rates, 2)

	assert.False(t, rates[0].Target.IsTrue())
	assert.Equal(t, 2, rates[0].Count)
	assert.Equal(t, 4, rates[0].Total)
	assert.InDelta(t, 200.0/3.0, rates[0].Percent, 1e-9)

	assert.True(t, rates[1].Target.IsTrue())
	assert.Equal(t, 1, rates[1].Count)
	assert.Equal(t, 4, rates[1].Total)
	assert.InDelta(t, 100.0/3.0, rates[1].Percent, 1e-9)
}

func TestAggregator_MissingGroupSkipped(t *testing.T) {
	agg := newTestAggregator(t)
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"country": {domain.StringValue("US"), domain.Null(), domain.StringValue("US")},
		"isFraud": {domain.BoolValue(true), domain.BoolValue(true), domain.BoolValue(false)},
	}, "country", "isFraud")

	rates, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "country"})
	require.NoError(t, err)

	for _, r := range rates {
		assert.Equal(t, "US", r.Group.String())
		assert.Equal(t, 2, r.Total)
	}
}

func TestAggregator_FilterTrue(t *testing.T) {
	agg := newTestAggregator(t)
	tbl := testutil.RegionFraudTable(t)

	all, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "region"})
	require.NoError(t, err)

	filtered, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "region", FilterTrue: true})
	require.NoError(t, err)

	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.True(t, r.Target.IsTrue())
		assert.Contains(t, all, r)
	}
	assert.Equal(t, "B", filtered[0].Group.String())
	assert.Equal(t, "A", filtered[1].Group.String())
}

func TestAggregator_FilterTrueNeedsBoolTarget(t *testing.T) {
	agg := newTestAggregator(t)
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"g":     testutil.Strings("a", "b"),
		"label": testutil.Strings("yes", "no"),
	}, "g", "label")

	_, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "g", TargetColumn: "label", FilterTrue: true})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	rates, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "g", TargetColumn: "label"})
	require.NoError(t, err)
	assert.Len(t, rates, 2)
}

func TestAggregator_Errors(t *testing.T) {
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"region":  testutil.Strings("A"),
		"isFraud": {domain.BoolValue(true)},
	}, "region", "isFraud")

	tests := []struct {
		name     string
		table    *domain.Table
		opts     AggregateOptions
		wantType apperrors.ErrorType
	}{
		{"unknown group", tbl, AggregateOptions{GroupColumn: "city"}, apperrors.ErrTypeColumnNotFound},
		{"unknown target", tbl, AggregateOptions{GroupColumn: "region", TargetColumn: "label"}, apperrors.ErrTypeColumnNotFound},
		{"empty group", tbl, AggregateOptions{}, apperrors.ErrTypeValidation},
		{"group equals target", tbl, AggregateOptions{GroupColumn: "isFraud"}, apperrors.ErrTypeValidation},
		{"nil table", nil, AggregateOptions{GroupColumn: "region"}, apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAggregator(t).Aggregate(context.Background(), tt.table, tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestAggregator_AggregateTable(t *testing.T) {
	agg := newTestAggregator(t)
	in := testutil.RegionFraudTable(t)

	out, err := agg.Aggregate(context.Background(), in, AggregateOptions{GroupColumn: "region"})
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "isFraud", "count", "total", "percent"}, out.ColumnNames())
	assert.Equal(t, 4, out.NumRows())

	first := out.RowMap(0)
	assert.Equal(t, "A", first["region"].String())
	assert.Equal(t, "5", first["count"].String())
	assert.Equal(t, "6", first["total"].String())
	assert.Equal(t, 10, in.NumRows(), "input must not change")
}

func TestAggregator_NumericGroupsSortNumerically(t *testing.T) {
	agg := newTestAggregator(t)
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"code":    {domain.IntValue(10), domain.IntValue(9), domain.IntValue(2)},
		"isFraud": {domain.BoolValue(true), domain.BoolValue(true), domain.BoolValue(true)},
	}, "code", "isFraud")

	rates, err := agg.Rates(context.Background(), tbl, AggregateOptions{GroupColumn: "code"})
	require.NoError(t, err)

	require.Len(t, rates, 3)
	assert.Equal(t, "2", rates[0].Group.String())
	assert.Equal(t, "9", rates[1].Group.String())
	assert.Equal(t, "10", rates[2].Group.String())
}
