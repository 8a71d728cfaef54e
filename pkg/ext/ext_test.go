package ext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext"
	"github.com/sandrolain/gojslt/pkg/ext/extarray"
	"github.com/sandrolain/gojslt/pkg/ext/extstring"
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
			want, err := value.ParseJSONString(tt.want)
			require.NoError(t, err)

			got, err := expr.Apply(input)
			require.NoError(t, err)
			assert.True(t, value.Equal(want, got), "want %s, got %s", tt.want, value.String(got))
		})
	}
}

func TestModules(t *testing.T) {
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
		{`import "ext:object" as o o:map-values(., .value * 2)`, `{"a":1,"b":2}`, `{"a":2,"b":4}`},
		{`import "ext:object" as o o:map-keys(., uppercase(.key))`, `{"a":1,"b":2}`, `{"A":1,"B":2}`},
		{`import "ext:string" as s s:camel-case("a b")`, "", `"aB"`},
		{`import "ext:numeric" as n n:pi() > 3`, "", `true`},
		{`import "ext:crypto" as c c:hash("", "sha1")`, "", `"da39a3ee5e6b4b0d3255bfef95601890afd80709"`},
	}, ext.WithModules())
}

func TestCategoryOptions(t *testing.T) {
	_, err := compiler.Compile(`repeat("a", 2)`, ext.WithString())
	require.NoError(t, err)

	_, err = compiler.Compile(`repeat("a", 2)`, ext.WithArray())
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNoSuchFunction))

	for _, opt := range []compiler.Option{ext.WithNumeric(), ext.WithObject(), ext.WithCrypto()} {
		_, err = compiler.Compile(`.`, opt)
		require.NoError(t, err)
	}
}

func TestMacrosNeedModule(t *testing.T) {
	_, err := compiler.Compile(`sort-by(., .a)`, ext.WithAll())
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNoSuchFunction))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		template string
		input    string
	}{
		{`chunk([1], 0)`, `null`},
		{`hash("a", "sha3")`, `null`},
		{`clamp(1, 5, 0)`, `null`},
		{`repeat("a", -1)`, `null`},
		{`from-pairs([1])`, `null`},
		{`pick(., [1])`, `{}`},
		{`first("nope")`, `null`},
		{`base64-decode("*")`, `null`},
		{`percentile([1], 101)`, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			expr, err := compiler.Compile(tt.template, ext.WithAll())
			require.NoError(t, err)
			in, err := value.ParseJSONString(tt.input)
			require.NoError(t, err)
			_, err = expr.Apply(in)
			require.Error(t, err)
			assert.True(t, types.IsCode(err, types.ErrFunctionArgument), err.Error())
		})
	}

	expr, err := compiler.Compile(`import "ext:array" as a a:sort-by(., .k)`, ext.WithModules())
	require.NoError(t, err)
	_, err = expr.Apply(value.Array{value.ObjectOf("k", value.Int(1)), value.ObjectOf("k", value.Text("x"))})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCannotCompare))
}

func TestCatalogue(t *testing.T) {
	names := map[string]bool{}
	for _, f := range ext.All() {
		assert.False(t, names[f.Name()], "duplicate %s", f.Name())
		names[f.Name()] = true
	}
	assert.Len(t, ext.Modules(), 5)
	assert.Contains(t, extstring.Module().Names(), "template")
	assert.Contains(t, extarray.Module().Names(), "sort-by")
}
