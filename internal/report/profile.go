package report

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"fraudscope/pkg/contracts/domain"
)

// DefaultTitle is the title written on the overview sheet
const DefaultTitle = "Transactions Profiling Report"

// Overview summarizes a whole table
type Overview struct {
	Title          string         `json:"title"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Rows           int            `json:"rows"`
	Columns        int            `json:"columns"`
	MissingCells   int            `json:"missing_cells"`
	MissingPercent float64        `json:"missing_percent"`
	DuplicateRows  int            `json:"duplicate_rows"`
	KindCounts     map[string]int `json:"kind_counts"`
}

// ValueCount is one entry of a column's most frequent values
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// NumericStats describes the int and float cells of a column
type NumericStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	// Std is the sample standard deviation; zero with fewer than two cells
	Std   float64 `json:"std"`
	Zeros int     `json:"zeros"`
}

// TimeStats describes the datetime cells of a column
type TimeStats struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// StringStats describes the string cells of a column
type StringStats struct {
	MinLength int     `json:"min_length"`
	MaxLength int     `json:"max_length"`
	AvgLength float64 `json:"avg_length"`
}

// ColumnProfile holds the statistics of one column
type ColumnProfile struct {
	Name           string        `json:"name"`
	Kind           string        `json:"kind"`
	NonMissing     int           `json:"non_missing"`
	Missing        int           `json:"missing"`
	MissingPercent float64       `json:"missing_percent"`
	Distinct       int           `json:"distinct"`
	Unique         bool          `json:"unique"`
	TopValues      []ValueCount  `json:"top_values"`
	Numeric        *NumericStats `json:"numeric,omitempty"`
	Times          *TimeStats    `json:"times,omitempty"`
	Strings        *StringStats  `json:"strings,omitempty"`
	// TrueRate is the share of true among boolean cells, in percent
	TrueRate *float64 `json:"true_rate,omitempty"`
}

// Profile is the result of profiling a table
type Profile struct {
	Overview Overview        `json:"overview"`
	Columns  []ColumnProfile `json:"columns"`
}

// ProfilerConfig holds configuration options for the Profiler
type ProfilerConfig struct {
	Title     string
	TopValues int
}

// Profiler computes per-column statistics of a table
type Profiler struct {
	logger *slog.Logger
	config ProfilerConfig
	now    func() time.Time
}

// NewProfiler creates a new profiler
func NewProfiler(logger *slog.Logger, cfg ProfilerConfig) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.TopValues <= 0 {
		cfg.TopValues = 10
	}
	return &Profiler{
		logger: logger.With(slog.String("component", "profiler")),
		config: cfg,
		now:    time.Now,
	}
}

// Profile computes the overview and column statistics of table. A nil table
// yields an empty profile.
func (p *Profiler) Profile(ctx context.Context, table *domain.Table) *Profile {
	profile := &Profile{
		Overview: Overview{
			Title:       p.config.Title,
			GeneratedAt: p.now().UTC(),
			KindCounts:  make(map[string]int),
		},
	}
	if table == nil {
		return profile
	}

	rows := table.NumRows()
	profile.Overview.Rows = rows
	profile.Overview.Columns = table.NumColumns()

	for _, col := range table.Columns() {
		cp := p.profileColumn(col, rows)
		profile.Columns = append(profile.Columns, cp)
		profile.Overview.MissingCells += cp.Missing
		profile.Overview.KindCounts[cp.Kind]++
	}

	if cells := rows * table.NumColumns(); cells > 0 {
		profile.Overview.MissingPercent = percent(profile.Overview.MissingCells, cells)
	}
	profile.Overview.DuplicateRows = duplicateRows(table)

	p.logger.DebugContext(ctx, "table profiled",
		slog.Int("rows", rows),
		slog.Int("columns", table.NumColumns()),
		slog.Int("missing_cells", profile.Overview.MissingCells),
		slog.Int("duplicate_rows", profile.Overview.DuplicateRows))

	return profile
}

func (p *Profiler) profileColumn(col *domain.Column, rows int) ColumnProfile {
	kind := col.Kind()
	cp := ColumnProfile{
		Name:       col.Name,
		Kind:       kind.String(),
		NonMissing: col.NonMissing(),
	}
	cp.Missing = rows - cp.NonMissing
	if rows > 0 {
		cp.MissingPercent = percent(cp.Missing, rows)
	}

	counts := make(map[string]int)
	var firstSeen []domain.Value
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if counts[k] == 0 {
			firstSeen = append(firstSeen, v)
		}
		counts[k]++
	}
	cp.Distinct = len(counts)
	cp.Unique = cp.NonMissing > 0 && cp.Distinct == cp.NonMissing
	cp.TopValues = topValues(firstSeen, counts, rows, p.config.TopValues)

	switch {
	case kind.IsNumeric():
		cp.Numeric = numericStats(col.Values)
	case kind == domain.KindTime:
		cp.Times = timeStats(col.Values)
	case kind == domain.KindString:
		cp.Strings = stringStats(col.Values)
	case kind == domain.KindBool:
		trues := 0
		for _, v := range col.Values {
			if v.IsTrue() {
				trues++
			}
		}
		rate := percent(trues, cp.NonMissing)
		cp.TrueRate = &rate
	}

	return cp
}

// topValues orders distinct values by count descending, then by value
func topValues(values []domain.Value, counts map[string]int, rows, n int) []ValueCount {
	sorted := make([]domain.Value, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := counts[sorted[i].Key()], counts[sorted[j].Key()]
		if ci != cj {
			return ci > cj
		}
		return sorted[i].Compare(sorted[j]) < 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]ValueCount, 0, len(sorted))
	for _, v := range sorted {
		c := counts[v.Key()]
		out = append(out, ValueCount{Value: v.String(), Count: c, Percent: percent(c, rows)})
	}
	return out
}

func numericStats(values []domain.Value) *NumericStats {
	var nums []float64
	for _, v := range values {
		if f, ok := v.Float(); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return nil
	}

	data := stats.Float64Data(nums)
	ns := &NumericStats{}
	// errors are only returned for empty input, ruled out above
	ns.Min, _ = stats.Min(data)
	ns.Max, _ = stats.Max(data)
	ns.Mean, _ = stats.Mean(data)
	if len(nums) > 1 {
		ns.Std, _ = stats.StandardDeviationSample(data)
	}
	for _, f := range nums {
		if f == 0 {
			ns.Zeros++
		}
	}
	return ns
}

func timeStats(values []domain.Value) *TimeStats {
	var st *TimeStats
	for _, v := range values {
		t, ok := v.Time()
		if !ok {
			continue
		}
		if st == nil {
			st = &TimeStats{Min: t, Max: t}
			continue
		}
		if t.Before(st.Min) {
			st.Min = t
		}
		if t.After(st.Max) {
			st.Max = t
		}
	}
	return st
}

func stringStats(values []domain.Value) *StringStats {
	var st *StringStats
	total, n := 0, 0
	for _, v := range values {
		s, ok := v.Str()
		if !ok {
			continue
		}
		l := len([]rune(s))
		if st == nil {
			st = &StringStats{MinLength: l, MaxLength: l}
		}
		if l < st.MinLength {
			st.MinLength = l
		}
		if l > st.MaxLength {
			st.MaxLength = l
		}
		total += l
		n++
	}
	if st != nil {
		st.AvgLength = float64(total) / float64(n)
	}
	return st
}

// duplicateRows counts rows identical to an earlier row
func duplicateRows(table *domain.Table) int {
	seen := make(map[string]struct{}, table.NumRows())
	dups := 0
	var sb strings.Builder
	for i := 0; i < table.NumRows(); i++ {
		sb.Reset()
		for _, v := range table.Row(i) {
			sb.WriteString(v.Key())
			sb.WriteByte(0x1f)
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
