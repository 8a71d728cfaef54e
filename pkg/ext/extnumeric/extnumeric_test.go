package extnumeric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext/extnumeric"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

type testCase struct {
	template string
	input    string
	want     string
}

func run(t *testing.T, tests []testCase, opts ...compiler.Option) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			expr, err := compiler.Compile(tt.template, opts...)
			require.NoError(t, err)
			input := value.Null
			if tt.input != "" {
				input, err = value.ParseJSONString(tt.input)
				require.NoError(t, err)
			}
			got, err := expr.Apply(input)
			require.NoError(t, err)
			want, err := value.ParseJSONString(tt.want)
			require.NoError(t, err)
			assert.True(t, value.Equal(want, got), "want %s, got %s", tt.want, value.String(got))
		})
	}
}

func expectArgError(t *testing.T, template, input string, opts ...compiler.Option) {
	t.Helper()
	expr, err := compiler.Compile(template, opts...)
	require.NoError(t, err)
	in, err := value.ParseJSONString(input)
	require.NoError(t, err)
	_, err = expr.Apply(in)
	require.Error(t, err, template)
	assert.True(t, types.IsCode(err, types.ErrFunctionArgument), err.Error())
}

func TestFunctions(t *testing.T) {
	run(t, []testCase{
		{`sign(-5)`, "", `-1`},
		{`sign(0)`, "", `0`},
		{`trunc(-3.7)`, "", `-3`},
		{`clamp(150, 0, 100)`, "", `100`},
		{`clamp(-5, 0, 100)`, "", `0`},
		{`clamp(50, 0, 100)`, "", `50`},
		{`clamp(null, 0, 100)`, "", `null`},
		{`log(1)`, "", `0`},
		{`round-to(3.14159, 2)`, "", `3.14`},
		{`round-to(1250, -2)`, "", `1300`},
		{`pow(2, 10)`, "", `1024`},
		{`sqrt(16)`, "", `4`},
		{`median([3, 1, 2])`, "", `2`},
		{`median([1, 2, 3, 4])`, "", `2.5`},
		{`median([])`, "", `null`},
		{`variance([1, 2, 3, 4])`, "", `1.25`},
		{`stddev([2, 4, 4, 4, 5, 5, 7, 9])`, "", `2`},
		{`percentile([1, 2, 3, 4, 5], 50)`, "", `3`},
		{`percentile([1, 2, 3, 4], 50)`, "", `2.5`},
		{`mode([1, 2, 2, 3, 3])`, "", `[2, 3]`},
	}, compiler.WithFunctions(extnumeric.All()...))
}

func TestModule(t *testing.T) {
	run(t, []testCase{
		{`import "ext:numeric" as n n:pi() > 3`, "", `true`},
		{`import "ext:numeric" as n n:sign(.)`, `-0.5`, `-1`},
	}, compiler.WithNamedModule(extnumeric.URI, extnumeric.Module()))
}

func TestArgumentErrors(t *testing.T) {
	opt := compiler.WithFunctions(extnumeric.All()...)
	expectArgError(t, `clamp(1, 5, 0)`, `null`, opt)
	expectArgError(t, `percentile([1], 101)`, `null`, opt)
	expectArgError(t, `median([1, "x"])`, `null`, opt)
}
