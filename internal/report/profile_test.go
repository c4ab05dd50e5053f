package report

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/shared/testutil"
	"fraudscope/pkg/contracts/domain"
)

func profileTable(t *testing.T) *domain.Table {
	t.Helper()
	d1 := time.Date(2016, 8, 13, 14, 27, 32, 0, time.UTC)
	d2 := time.Date(2016, 11, 11, 9, 18, 39, 0, time.UTC)
	return testutil.MustTable(t, map[string][]domain.Value{
		"merchantName": {
			domain.StringValue("Uber"), domain.StringValue("Lyft"),
			domain.StringValue("Uber"), domain.StringValue("Uber"),
		},
		"transactionAmount": {
			domain.FloatValue(98.55), domain.FloatValue(74.51),
			domain.IntValue(0), domain.FloatValue(98.55),
		},
		"transactionDateTime": {
			domain.TimeValue(d2), domain.TimeValue(d1), domain.Null(), domain.TimeValue(d2),
		},
		"isFraud": {
			domain.BoolValue(false), domain.BoolValue(true),
			domain.BoolValue(false), domain.BoolValue(false),
		},
	}, "merchantName", "transactionAmount", "transactionDateTime", "isFraud")
}

func columnByName(t *testing.T, p *Profile, name string) ColumnProfile {
	t.Helper()
	for _, c := range p.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not profiled", name)
	return ColumnProfile{}
}

func TestProfiler_Overview(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	p := NewProfiler(logger, ProfilerConfig{TopValues: 3})

	profile := p.Profile(context.Background(), profileTable(t))

	o := profile.Overview
	assert.Equal(t, DefaultTitle, o.Title)
	assert.Equal(t, 4, o.Rows)
	assert.Equal(t, 4, o.Columns)
	assert.Equal(t, 1, o.MissingCells)
	assert.InDelta(t, 6.25, o.MissingPercent, 1e-9)
	assert.Equal(t, 1, o.DuplicateRows, "rows 0 and 3 are identical")
	assert.Equal(t, map[string]int{"string": 1, "float": 1, "datetime": 1, "bool": 1}, o.KindCounts)
	require.Len(t, profile.Columns, 4)
	assert.Equal(t, "merchantName", profile.Columns[0].Name)
}

func TestProfiler_Columns(t *testing.T) {
	p := NewProfiler(nil, ProfilerConfig{TopValues: 1})
	profile := p.Profile(context.Background(), profileTable(t))

	t.Run("string", func(t *testing.T) {
		c := columnByName(t, profile, "merchantName")
		assert.Equal(t, "string", c.Kind)
		assert.Equal(t, 2, c.Distinct)
		assert.False(t, c.Unique)
		require.Len(t, c.TopValues, 1)
		assert.Equal(t, ValueCount{Value: "Uber", Count: 3, Percent: 75}, c.TopValues[0])
		require.NotNil(t, c.Strings)
		assert.Equal(t, 4, c.Strings.MinLength)
		assert.Equal(t, 4, c.Strings.MaxLength)
		assert.Nil(t, c.Numeric)
	})

	t.Run("numeric", func(t *testing.T) {
		c := columnByName(t, profile, "transactionAmount")
		require.NotNil(t, c.Numeric)
		assert.Equal(t, 0.0, c.Numeric.Min)
		assert.Equal(t, 98.55, c.Numeric.Max)
		assert.InDelta(t, 67.9025, c.Numeric.Mean, 1e-9)
		assert.Equal(t, 1, c.Numeric.Zeros)

		mean := 67.9025
		ss := 0.0
		for _, f := range []float64{98.55, 74.51, 0, 98.55} {
			ss += (f - mean) * (f - mean)
		}
		assert.InDelta(t, math.Sqrt(ss/3), c.Numeric.Std, 1e-9)
	})

	t.Run("datetime", func(t *testing.T) {
		c := columnByName(t, profile, "transactionDateTime")
		assert.Equal(t, "datetime", c.Kind)
		assert.Equal(t, 1, c.Missing)
		assert.InDelta(t, 25.0, c.MissingPercent, 1e-9)
		require.NotNil(t, c.Times)
		assert.Equal(t, 2016, c.Times.Min.Year())
		assert.Equal(t, time.August, c.Times.Min.Month())
		assert.Equal(t, time.November, c.Times.Max.Month())
	})

	t.Run("bool", func(t *testing.T) {
		c := columnByName(t, profile, "isFraud")
		require.NotNil(t, c.TrueRate)
		assert.InDelta(t, 25.0, *c.TrueRate, 1e-9)
		assert.Equal(t, "false", c.TopValues[0].Value)
	})
}

func TestProfiler_TopValuesTieBreak(t *testing.T) {
	table := testutil.MustTable(t, map[string][]domain.Value{
		"code": {domain.StringValue("b"), domain.StringValue("a"), domain.StringValue("c"), domain.StringValue("a")},
	}, "code")
	profile := NewProfiler(nil, ProfilerConfig{TopValues: 10}).Profile(context.Background(), table)

	top := profile.Columns[0].TopValues
	require.Len(t, top, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{top[0].Value, top[1].Value, top[2].Value})
	assert.Equal(t, 2, top[0].Count)
}

func TestProfiler_EmptyInputs(t *testing.T) {
	p := NewProfiler(nil, ProfilerConfig{})

	profile := p.Profile(context.Background(), nil)
	assert.Zero(t, profile.Overview.Rows)
	assert.Empty(t, profile.Columns)

	empty := testutil.MustTable(t, map[string][]domain.Value{"a": {}}, "a")
	profile = p.Profile(context.Background(), empty)
	assert.Equal(t, 1, profile.Overview.Columns)
	assert.Zero(t, profile.Overview.MissingPercent)
	c := profile.Columns[0]
	assert.Equal(t, "null", c.Kind)
	assert.False(t, c.Unique)
	assert.Empty(t, c.TopValues)
}

func TestProfiler_SingleNumericValue(t *testing.T) {
	p := NewProfiler(nil, ProfilerConfig{})
	tbl := testutil.MustTable(t, map[string][]domain.Value{
		"amount": {domain.FloatValue(12.5), domain.Null()},
	}, "amount")

	c := p.Profile(context.Background(), tbl).Columns[0]
	require.NotNil(t, c.Numeric)
	assert.Equal(t, 12.5, c.Numeric.Min)
	assert.Equal(t, 12.5, c.Numeric.Max)
	assert.Equal(t, 12.5, c.Numeric.Mean)
	assert.Zero(t, c.Numeric.Std)
}
