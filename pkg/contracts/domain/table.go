package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumn is returned when a column name is added twice
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrLengthMismatch is returned when a column length differs from the table row count
	ErrLengthMismatch = errors.New("column length mismatch")
)

// Column is a named sequence of cells
type Column struct {
	Name   string
	Values []Value
}

// Kind infers the column kind from its non-null cells
func (c *Column) Kind() Kind {
	kind := KindNull
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		switch {
		case kind == KindNull:
			kind = v.Kind()
		case kind != v.Kind():
			if kind.IsNumeric() && v.Kind().IsNumeric() {
				kind = KindFloat
				continue
			}
			return KindMixed
		}
	}
	return kind
}

// NonMissing counts cells that are not the missing-value marker
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsNull() {
			n++
		}
	}
	return n
}

// Table is an in-memory ordered set of named, equal-length columns.
// Rows are identified only by position.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// NewTableWithRows creates an empty table with a fixed row count, used when the
// row count is known before any column is added (e.g. zero-row results).
func NewTableWithRows(rows int) *Table {
	t := NewTable()
	t.rows = rows
	return t
}

// AddColumn appends a column. The first column fixes the row count unless the
// table was created with NewTableWithRows.
func (t *Table) AddColumn(name string, values []Value) error {
	if _, exists := t.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	if len(t.columns) == 0 && t.rows == 0 {
		t.rows = len(values)
	}
	if len(values) != t.rows {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows", ErrLengthMismatch, name, len(values), t.rows)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, &Column{Name: name, Values: values})
	return nil
}

// NumRows returns the row count
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column { return t.columns }

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Row returns the cells of row i in column order
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// RowMap returns row i keyed by column name
func (t *Table) RowMap(i int) map[string]Value {
	row := make(map[string]Value, len(t.columns))
	for _, c := range t.columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// Head returns a copy holding the first n rows
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	out := NewTableWithRows(n)
	for _, c := range t.columns {
		values := make([]Value, n)
		copy(values, c.Values[:n])
		out.mustAdd(c.Name, values)
	}
	return out
}

// Clone returns a deep copy. Value payloads are immutable so copying the
// slices is enough.
func (t *Table) Clone() *Table {
	out := NewTableWithRows(t.rows)
	for _, c := range t.columns {
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		out.mustAdd(c.Name, values)
	}
	return out
}

// Drop returns a new table without the named columns, sharing the storage of
// the kept ones. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := NewTableWithRows(t.rows)
	for _, c := range t.columns {
		if skip[c.Name] {
			continue
		}
		out.mustAdd(c.Name, c.Values)
	}
	return out
}

// SetColumn replaces the values of an existing column. Only used on tables
// the caller owns, such as a fresh Clone.
func (t *Table) SetColumn(name string, values []Value) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows", ErrLengthMismatch, name, len(values), t.rows)
	}
	t.columns[i] = &Column{Name: name, Values: values}
	return nil
}

func (t *Table) mustAdd(name string, values []Value) {
	if err := t.AddColumn(name, values); err != nil {
		panic(err)
	}
}
