package extobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext/extobject"
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
		{`keys(.)`, `{"b":1,"a":2}`, `["b","a"]`},
		{`values(.)`, `{"b":1,"a":2}`, `[1,2]`},
		{`pairs(.)`, `{"b":1,"a":2}`, `[["b",1],["a",2]]`},
		{`from-pairs([["a", 1], ["b", 2]])`, "", `{"a":1,"b":2}`},
		{`pick(., ["a"])`, `{"a":1,"b":2}`, `{"a":1}`},
		{`omit(., ["a"])`, `{"a":1,"b":2}`, `{"b":2}`},
		{`deep-merge(.)`, `[{"a":{"x":1}},{"a":{"y":2},"b":3}]`, `{"a":{"x":1,"y":2},"b":3}`},
		{`invert(.)`, `{"a":"x","b":1}`, `{"x":"a","1":"b"}`},
		{`rename(., {"a": "z"})`, `{"a":1,"b":2}`, `{"z":1,"b":2}`},
	}, compiler.WithFunctions(extobject.All()...))
}

func TestMacros(t *testing.T) {
	run(t, []testCase{
		{`import "ext:object" as o o:map-values(., .value * 2)`, `{"a":1,"b":2}`, `{"a":2,"b":4}`},
		{`import "ext:object" as o o:map-keys(., uppercase(.key))`, `{"a":1,"b":2}`, `{"A":1,"B":2}`},
	}, compiler.WithNamedModule(extobject.URI, extobject.Module()))
}

func TestArgumentErrors(t *testing.T) {
	opt := compiler.WithFunctions(extobject.All()...)
	expectArgError(t, `from-pairs([1])`, `null`, opt)
	expectArgError(t, `pick(., [1])`, `{}`, opt)
}
