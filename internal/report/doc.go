// Package report profiles a cleaned transactions table and renders the
// result as an xlsx workbook.
//
// The Profiler computes an Overview of the whole table (rows, columns,
// missing cells, duplicate rows) and a ColumnProfile for each column with its
// kind, missing share, distinct count and most frequent values. Numeric,
// datetime, string and boolean columns additionally get kind specific
// statistics.
//
// The Writer lays the profile out over four sheets: Overview, Variables,
// Top Values and Sample.
package report
