package extcrypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext/extcrypto"
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
		{`hash("abc", "sha256")`, "", `"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"`},
		{`hash("abc", "MD5")`, "", `"900150983cd24fb0d6963f7d28e17f72"`},
		{
			`hmac("The quick brown fox jumps over the lazy dog", "key", "sha256")`, "",
			`"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"`,
		},
		{`base64-encode("hello")`, "", `"aGVsbG8="`},
		{`base64-decode("aGVsbG8=")`, "", `"hello"`},
		{`uuid-v5("dns", "python.org")`, "", `"886313e1-3b8a-5372-9b90-0c9aee199e5d"`},
		{`hash(null, "sha256")`, "", `null`},
	}, compiler.WithFunctions(extcrypto.All()...))
}

func TestUUIDv7(t *testing.T) {
	expr, err := compiler.Compile(`uuid-v7()`, compiler.WithFunctions(extcrypto.All()...))
	require.NoError(t, err)
	out, err := expr.Apply(value.Null)
	require.NoError(t, err)
	id, ok := out.(value.Text)
	require.True(t, ok)
	assert.Len(t, string(id), 36)
	assert.Equal(t, byte('7'), id[14])
}

func TestModule(t *testing.T) {
	run(t, []testCase{
		{`import "ext:crypto" as c c:hash("", "sha1")`, "", `"da39a3ee5e6b4b0d3255bfef95601890afd80709"`},
	}, compiler.WithNamedModule(extcrypto.URI, extcrypto.Module()))
}

func TestArgumentErrors(t *testing.T) {
	opt := compiler.WithFunctions(extcrypto.All()...)
	expectArgError(t, `hash("a", "sha3")`, `null`, opt)
	expectArgError(t, `base64-decode("*")`, `null`, opt)
}
