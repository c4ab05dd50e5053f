package exporter

import (
	"strconv"
	"time"

	"fraudscope/pkg/contracts/domain"
)

// FormatCell formats a cell for CSV output. Missing cells are empty and
// datetimes use RFC 3339 with as many fractional seconds as they carry.
func FormatCell(v domain.Value, floatPrecision int) string {
	switch v.Kind() {
	case domain.KindNull:
		return ""
	case domain.KindFloat:
		f, _ := v.Float()
		return formatFloat(f, floatPrecision)
	case domain.KindTime:
		t, _ := v.Time()
		return t.Format(time.RFC3339Nano)
	default:
		return v.String()
	}
}

// formatFloat formats f with the given number of decimals, or the shortest
// exact representation when precision is negative
func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}
