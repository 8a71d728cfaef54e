package extutil

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func assertArgError(t *testing.T, err error, fn string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrFunctionArgument), err.Error())
	assert.Contains(t, err.Error(), fn+": ")
}

func TestText(t *testing.T) {
	s, ok, err := Text("f", value.Text("abc"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	for _, v := range []value.Value{nil, value.Null} {
		_, ok, err = Text("f", v)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	_, _, err = Text("f", value.Int(1))
	assertArgError(t, err, "f")
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		want float64
	}{
		{"int", value.Int(3), 3},
		{"long", value.Long(1 << 40), 1 << 40},
		{"double", value.Double(2.5), 2.5},
		{"big decimal", value.MustFromNative(decimal.RequireFromString("1.25")), 1.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok, err := Float("f", tt.in)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, f, 1e-9)
		})
	}

	_, ok, err := Float("f", value.Null)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Float("g", value.Text("1"))
	assertArgError(t, err, "g")
}

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		want int
	}{
		{"int", value.Int(-4), -4},
		{"long", value.Long(1 << 33), 1 << 33},
		{"truncated", value.Double(2.9), 2},
		{"negative truncated", value.Double(-2.9), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok, err := Int("f", tt.in)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, n)
		})
	}

	_, ok, err := Int("f", value.Null)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, bad := range []value.Value{value.Double(math.NaN()), value.Double(math.Inf(-1)), value.True} {
		_, _, err = Int("f", bad)
		assertArgError(t, err, "f")
	}
}

func TestArrayAndObject(t *testing.T) {
	arr, ok, err := Array("f", value.Array{value.Int(1)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, arr, 1)

	_, ok, err = Array("f", value.Null)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Array("f", value.ObjectOf())
	assertArgError(t, err, "f")

	obj, ok, err := Object("f", value.ObjectOf("a", value.Int(1)))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, obj.Len())

	_, ok, err = Object("f", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Object("f", value.Array{})
	assertArgError(t, err, "f")
}

func TestFloats(t *testing.T) {
	fs, err := Floats("f", value.Array{value.Int(1), value.Double(0.5), value.Long(7)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, 7}, fs)

	_, err = Floats("f", value.Array{value.Int(1), value.Text("x")})
	assertArgError(t, err, "f")
	assert.Contains(t, err.Error(), "element 1")
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want value.Value
	}{
		{3, value.Int(3)},
		{-0.0, value.Int(0)},
		{1 << 40, value.Long(1 << 40)},
		{2.5, value.Double(2.5)},
		{1 << 60, value.Double(1 << 60)},
	}
	for _, tt := range tests {
		got := Number(tt.in)
		assert.IsType(t, tt.want, got, "Number(%v)", tt.in)
		assert.True(t, value.Equal(tt.want, got), "Number(%v) = %s", tt.in, value.String(got))
	}
}

func TestModule(t *testing.T) {
	m := Module([]functions.Function{
		functions.Define("b", 0, 0, nil),
		functions.Define("a", 1, 1, nil),
	})
	assert.Equal(t, []string{"a", "b"}, m.Names())
	assert.Equal(t, 1, m.Callable("a").MinArguments())
}
