package domain

// DefaultTargetColumn is the label column of the transactions dataset
const DefaultTargetColumn = "isFraud"

// GroupRate holds the share of one target value inside one group
type GroupRate struct {
	Group   Value   `json:"group"`
	Target  Value   `json:"target"`
	Count   int     `json:"count"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// DatasetSummary describes a loaded table
type DatasetSummary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// ColumnSummary describes one column of a loaded table
type ColumnSummary struct {
	Name            string  `json:"name"`
	Kind            string  `json:"kind"`
	NonMissing      int     `json:"non_missing"`
	MissingFraction float64 `json:"missing_fraction"`
}

// Summarize builds a DatasetSummary for a table
func Summarize(t *Table) DatasetSummary {
	summary := DatasetSummary{
		Rows:    t.NumRows(),
		Columns: make([]ColumnSummary, 0, t.NumColumns()),
	}
	for _, c := range t.Columns() {
		nonMissing := c.NonMissing()
		missing := 0.0
		if t.NumRows() > 0 {
			missing = float64(t.NumRows()-nonMissing) / float64(t.NumRows())
		}
		summary.Columns = append(summary.Columns, ColumnSummary{
			Name:            c.Name,
			Kind:            c.Kind().String(),
			NonMissing:      nonMissing,
			MissingFraction: missing,
		})
	}
	return summary
}
