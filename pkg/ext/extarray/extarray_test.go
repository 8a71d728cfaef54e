package extarray_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext/extarray"
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
		{`first(.)`, `[1,2,3]`, `1`},
		{`last(.)`, `[1,2,3]`, `3`},
		{`first([])`, "", `null`},
		{`take(., 2)`, `[1,2,3]`, `[1,2]`},
		{`take(., 10)`, `[1,2,3]`, `[1,2,3]`},
		{`skip(., 2)`, `[1,2,3]`, `[3]`},
		{`chunk(., 2)`, `[1,2,3,4,5]`, `[[1,2],[3,4],[5]]`},
		{`window(., 2)`, `[1,2,3,4]`, `[[1,2],[2,3],[3,4]]`},
		{`window(., 2, 2)`, `[1,2,3,4,5]`, `[[1,2],[3,4]]`},
		{`unique(.)`, `[1,1.0,2,"a","a"]`, `[1,2,"a"]`},
		{`union([1, 2], [2, 3])`, "", `[1,2,3]`},
		{`intersection([1, 2, 3], [2, 3, 4])`, "", `[2,3]`},
		{`difference([1, 2, 3], [2, 3, 4])`, "", `[1]`},
		{`symmetric-difference([1, 2, 3], [2, 3, 4])`, "", `[1,4]`},
		{`union(null, [1])`, "", `[1]`},
		{`range(0, 5)`, "", `[0,1,2,3,4]`},
		{`range(0, 1, 0.25)`, "", `[0,0.25,0.5,0.75]`},
		{`range(3, 0, -1)`, "", `[3,2,1]`},
		{`zip-longest([1, 2], [3])`, "", `[[1,3],[2,null]]`},
		{`zip-longest([1], [], 0)`, "", `[[1,0]]`},
	}, compiler.WithFunctions(extarray.All()...))
}

func TestMacros(t *testing.T) {
	run(t, []testCase{
		{
			`import "ext:array" as a a:sort-by(., .age)`,
			`[{"n":"x","age":30},{"n":"y","age":20},{"n":"z","age":30}]`,
			`[{"n":"y","age":20},{"n":"x","age":30},{"n":"z","age":30}]`,
		},
		{`import "ext:array" as a a:count-by(., .t)`, `[{"t":"a"},{"t":"b"},{"t":"a"}]`, `{"a":2,"b":1}`},
		{`import "ext:array" as a a:sum-by(., .v * 2)`, `[{"v":1},{"v":2.5}]`, `7.0`},
		{`import "ext:array" as a a:min-by(., .v)`, `[{"v":3},{"v":null},{"v":1}]`, `{"v":1}`},
		{`import "ext:array" as a a:max-by(., .v)`, `[{"v":3},{"v":5},{"v":5}]`, `{"v":5}`},
		{`import "ext:array" as a a:first(.)`, `[4]`, `4`},
	}, compiler.WithNamedModule(extarray.URI, extarray.Module()))
}

func TestArgumentErrors(t *testing.T) {
	opt := compiler.WithFunctions(extarray.All()...)
	expectArgError(t, `chunk([1], 0)`, `null`, opt)
	expectArgError(t, `first("nope")`, `null`, opt)
}

func TestSortByIncomparable(t *testing.T) {
	expr, err := compiler.Compile(`import "ext:array" as a a:sort-by(., .k)`,
		compiler.WithNamedModule(extarray.URI, extarray.Module()))
	require.NoError(t, err)
	_, err = expr.Apply(value.Array{value.ObjectOf("k", value.Int(1)), value.ObjectOf("k", value.Text("x"))})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCannotCompare))
}
