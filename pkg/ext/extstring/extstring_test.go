package extstring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/compiler"
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
		{`index-of-string("abcabc", "bc")`, "", `1`},
		{`index-of-string("abcabc", "bc", 2)`, "", `4`},
		{`index-of-string("äbc", "c")`, "", `2`},
		{`index-of-string("abc", "x")`, "", `-1`},
		{`last-index-of-string("abcabc", "bc")`, "", `4`},
		{`capitalize("hello WORLD")`, "", `"Hello world"`},
		{`title-case("hello world")`, "", `"Hello World"`},
		{`camel-case("hello_world")`, "", `"helloWorld"`},
		{`camel-case(.missing)`, `{}`, `null`},
		{`snake-case("helloWorld")`, "", `"hello_world"`},
		{`kebab-case("Hello World")`, "", `"hello-world"`},
		{`repeat("ab", 3)`, "", `"ababab"`},
		{`pad-left("7", 3, "0")`, "", `"007"`},
		{`pad-right("ab", 4)`, "", `"ab  "`},
		{`pad-left("long", 2)`, "", `"long"`},
		{`words(" a  b ")`, "", `["a","b"]`},
		{`template("Hello, {{name}}!", {"name": "World"})`, "", `"Hello, World!"`},
		{`template("{{n}} x {{ unknown }}", .)`, `{"n":3}`, `"3 x {{ unknown }}"`},
	}, compiler.WithFunctions(extstring.All()...))
}

func TestModule(t *testing.T) {
	run(t, []testCase{
		{`import "ext:string" as s s:snake-case(.)`, `"fooBar"`, `"foo_bar"`},
	}, compiler.WithNamedModule(extstring.URI, extstring.Module()))
}

func TestArgumentErrors(t *testing.T) {
	opt := compiler.WithFunctions(extstring.All()...)
	expectArgError(t, `repeat("a", -1)`, `null`, opt)
	expectArgError(t, `camel-case(1)`, `null`, opt)
}
