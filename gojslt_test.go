package gojslt_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func TestApplyJSON(t *testing.T) {
	tests := []struct {
		name     string
		template string
		input    string
		want     string
	}{
		{"identity", `.`, `{"a":1}`, `{"a":1}`},
		{"matcher", `{"id": .user.id, * : .}`, `{"user":{"id":1},"x":2}`, `{"id":1,"user":{"id":1},"x":2}`},
		{"for", `[for (.) . * 2]`, `[1,2,3]`, `[2,4,6]`},
		{"empty input", `.a`, ``, `null`},
		{"key order", `{"b": 1, "a": 2}`, `null`, `{"b":1,"a":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := gojslt.ApplyJSON(tt.template, []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestApplyJSONErrors(t *testing.T) {
	_, err := gojslt.ApplyJSON(`.`, []byte(`{"a":`))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrSyntaxError))

	_, err = gojslt.ApplyJSON(`{"a": }`, []byte(`{}`))
	require.Error(t, err)

	_, err = gojslt.ApplyJSON(`error("stop")`, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrUserError))
}

func TestApplyCachesTemplates(t *testing.T) {
	gojslt.ClearCache()
	const template = `.n + 1`

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := gojslt.Apply(template, value.ObjectOf("n", value.Int(i)))
			assert.NoError(t, err)
			assert.True(t, value.Equal(value.Int(i+1), out))
		}()
	}
	wg.Wait()

	// a failing template is not cached, and fails every time
	for range 2 {
		_, err := gojslt.Apply(`nosuch()`, value.Null)
		require.Error(t, err)
		assert.True(t, types.IsCode(err, types.ErrNoSuchFunction))
	}
}

func TestApplyNative(t *testing.T) {
	out, err := gojslt.ApplyNative(`{"b": .a, "n": size(.list)}`, map[string]any{
		"a":    "x",
		"list": []any{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": "x", "n": int32(2)}, out)
}

func TestCompileWithOptions(t *testing.T) {
	double := functions.Define("double", 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Multiply(args[0], value.Int(2))
	})
	expr, err := gojslt.Compile(`{"v": double(.v), "z": null}`,
		gojslt.WithSource("double.jslt"),
		gojslt.WithFunctions(double),
		gojslt.WithObjectFilterExpression(`true`),
	)
	require.NoError(t, err)

	out, err := expr.Apply(value.ObjectOf("v", value.Int(21)))
	require.NoError(t, err)
	assert.Equal(t, `{"v":42,"z":null}`, value.String(out))
}

func TestMustCompile(t *testing.T) {
	assert.NotNil(t, gojslt.MustCompile(`.`))
	assert.Panics(t, func() { gojslt.MustCompile(`{`) })
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, gojslt.Version())
}
