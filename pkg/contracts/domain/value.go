package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind represents the type of a cell or column
type Kind int

const (
	// KindNull is the missing-value marker
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	// KindMixed is only reported for columns whose non-null cells disagree
	KindMixed
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "datetime"
	case KindMixed:
		return "mixed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// IsNumeric reports whether the kind holds a number
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// Value is a typed cell. The zero Value is the missing-value marker.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

// Null returns the missing-value marker
func Null() Value { return Value{} }

// StringValue creates a string cell. An empty string is not missing.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue creates an integer cell
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue creates a floating-point cell. NaN is stored as missing.
func FloatValue(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: KindFloat, f: f}
}

// BoolValue creates a boolean cell
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue creates a datetime cell. The zero time is stored as missing.
func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Value{kind: KindTime, t: t}
}

// Kind returns the kind of the cell
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is the missing-value marker
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int returns the integer payload
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the numeric payload of int and float cells
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Time returns the datetime payload
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindTime }

// IsTrue reports whether the cell is the boolean true
func (v Value) IsTrue() bool { return v.kind == KindBool && v.b }

// IsBlank reports whether the cell is a string that is empty or all whitespace
func (v Value) IsBlank() bool {
	return v.kind == KindString && strings.TrimSpace(v.s) == ""
}

// Interface returns the payload as a plain Go value (nil for missing)
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String formats the cell for display. Missing cells render as "NaN" like the
// notebooks this tool replaces.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return "NaN"
	}
}

// Key returns a string that is equal for equal cells and distinct across kinds.
// Integral floats share the key of the matching int.
func (v Value) Key() string {
	switch v.kind {
	case KindFloat:
		switch {
		case v.f == 0:
			return "n:0"
		case v.f == math.Trunc(v.f):
			// integral floats render like the equal int, however large
			return "n:" + strconv.FormatFloat(v.f, 'f', -1, 64)
		}
		return "n:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return "n:" + strconv.FormatInt(v.i, 10)
	case KindString:
		return "s:" + v.s
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	case KindTime:
		return "t:" + strconv.FormatInt(v.t.Unix(), 10) + "." + fmt.Sprintf("%09d", v.t.Nanosecond())
	default:
		return "null"
	}
}

// Equal reports whether two cells hold the same value
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Compare orders two cells: -1, 0 or +1. Numbers compare numerically across int
// and float; cells of different kinds order by kind with missing first.
func (v Value) Compare(o Value) int {
	if v.kind.IsNumeric() && o.kind.IsNumeric() {
		a, _ := v.Float()
		b, _ := o.Float()
		return compareOrdered(a, b)
	}
	if v.kind != o.kind {
		return compareOrdered(v.kind, o.kind)
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.s, o.s)
	case KindBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	case KindTime:
		return v.t.Compare(o.t)
	}
	return 0
}

// MarshalJSON encodes the payload; missing cells become null
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindTime {
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	}
	return json.Marshal(v.Interface())
}

func compareOrdered[T int | float64 | Kind](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
