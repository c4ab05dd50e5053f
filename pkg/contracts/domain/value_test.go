package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Constructors(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, FloatValue(math.NaN()).IsNull())
	assert.True(t, TimeValue(time.Time{}).IsNull())
	assert.False(t, StringValue("").IsNull(), "empty string is not missing")

	f, ok := IntValue(3).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = StringValue("3").Float()
	assert.False(t, ok)
}

func TestValue_IsBlank(t *testing.T) {
	tests := []struct {
		value Value
		want  bool
	}{
		{StringValue(""), true},
		{StringValue("   "), true},
		{StringValue("\t\n"), true},
		{StringValue(" x "), false},
		{Null(), false},
		{IntValue(0), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.value.IsBlank(), "value %q", tt.value.String())
	}
}

func TestValue_KeyAndEqual(t *testing.T) {
	assert.True(t, IntValue(1).Equal(FloatValue(1.0)))
	assert.False(t, StringValue("true").Equal(BoolValue(true)))
	assert.False(t, StringValue("1").Equal(IntValue(1)))
	assert.True(t, Null().Equal(Null()))
	assert.NotEqual(t, FloatValue(1.5).Key(), FloatValue(1.25).Key())
}

func TestValue_KeyMatchesCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
	}{
		{"large integral float", FloatValue(1e16), IntValue(10_000_000_000_000_000)},
		{"max exact float", FloatValue(1 << 62), IntValue(1 << 62)},
		{"negative zero", FloatValue(math.Copysign(0, -1)), IntValue(0)},
		{"same instant in two zones",
			TimeValue(time.Date(2016, 8, 13, 14, 27, 32, 5, time.UTC)),
			TimeValue(time.Date(2016, 8, 13, 16, 27, 32, 5, time.FixedZone("EET", 2*3600)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Zero(t, tt.a.Compare(tt.b))
			assert.Equal(t, tt.a.Key(), tt.b.Key())
			assert.True(t, tt.a.Equal(tt.b))
		})
	}
}

func TestValue_KeyDistinctTimesOutsideNanoRange(t *testing.T) {
	far := TimeValue(time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC))
	early := TimeValue(time.Date(1715, 6, 13, 0, 25, 26, 290_000_000, time.UTC))
	later := TimeValue(time.Date(2300, 1, 1, 0, 0, 0, 1, time.UTC))

	assert.NotEqual(t, far.Key(), early.Key())
	assert.NotEqual(t, far.Key(), later.Key())
	assert.Equal(t, far.Key(), TimeValue(time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)).Key())
}

func TestValue_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"strings", StringValue("A"), StringValue("B"), -1},
		{"int vs float", IntValue(2), FloatValue(1.5), 1},
		{"bools", BoolValue(false), BoolValue(true), -1},
		{"equal bools", BoolValue(true), BoolValue(true), 0},
		{"null first", Null(), StringValue("a"), -1},
		{"times", TimeValue(time.Unix(10, 0)), TimeValue(time.Unix(5, 0)), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Value{Null(), StringValue("x"), IntValue(2), BoolValue(true)})
	assert.NoError(t, err)
	assert.JSONEq(t, `[null,"x",2,true]`, string(data))

	data, err = json.Marshal(TimeValue(time.Date(2016, 8, 13, 14, 27, 32, 0, time.UTC)))
	assert.NoError(t, err)
	assert.Equal(t, `"2016-08-13T14:27:32Z"`, string(data))
}
