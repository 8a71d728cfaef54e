package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// run executes the command tree with args and returns what it printed.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApplyExpr(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, `{"a": 1, "b": 2}`, "apply", "--expr", `{"x": .a, * : .}`)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"a":1,"b":2}`+"\n", out)
}

func TestApplyFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	tmpl := writeFile(t, dir, "t.jslt", `import "lib.jslt" as lib
{"n": lib:double(.n), "env": $env}`)
	writeFile(t, dir, "lib.jslt", `def double(x) $x * 2`)
	a := writeFile(t, dir, "a.json", `{"n": 1}`)
	b := writeFile(t, dir, "b.yaml", "n: 2\n")

	out, err := run(t, "", "apply", "--template", tmpl, "--var", `env="test"`, "--workers", "1", a, b)
	require.NoError(t, err)
	assert.Equal(t, `{"n":2,"env":"test"}`+"\n"+`{"n":4,"env":"test"}`+"\n", out)
}

func TestApplyOutputFormats(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, `{"a": [1]}`, "apply", "-e", ".", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "a:\n  - 1\n", out)

	out, err = run(t, `{"a": 1}`, "apply", "-e", ".", "-o", "pretty")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out)

	_, err = run(t, `{}`, "apply", "-e", ".", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output_format")
}

func TestApplyCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	good := writeFile(t, dir, "good.json", `{"n": 1}`)
	bad := writeFile(t, dir, "bad.json", `{"n": "x"}`)
	bad2 := writeFile(t, dir, "bad2.json", `{"n": [1]}`)

	out, err := run(t, "", "apply", "-e", `.n - 1`, bad, good, bad2)
	require.Error(t, err)
	assert.Equal(t, "0\n", out)
	assert.Contains(t, err.Error(), "bad.json")
	assert.NotContains(t, err.Error(), "good.json")
}

func TestApplyErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, `{}`, "apply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no template")

	_, err = run(t, `{`, "apply", "-e", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse -")

	_, err = run(t, `{}`, "apply", "-e", ".", "--var", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name=json")

	_, err = run(t, `{}`, "apply", "-e", "$v", "--var", "v=nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variable v")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "jslt.yaml", `
expr: '{"greeting": $greeting, "v": .v}'
output_format: yaml
object_filter: 'true'
variables:
  greeting: '"hi"'
`)

	out, err := run(t, `{}`, "apply")
	require.NoError(t, err)
	assert.Equal(t, "greeting: hi\nv: null\n", out)

	// flags win over the file
	out, err = run(t, `{"v": 1}`, "apply", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, `{"greeting":"hi","v":1}`+"\n", out)
}

func TestConfigEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JSLT_OUTPUT_FORMAT", "pretty")
	t.Setenv("JSLT_EXTENSIONS", "true")

	out, err := run(t, `{"s": "hello world"}`, "apply", "-e", `{"s": camel-case(.s)}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"s\": \"helloWorld\"\n}\n", out)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	good := writeFile(t, dir, "good.jslt", `{"a": $x}`)
	bad := writeFile(t, dir, "bad.jslt", "{\n  \"a\": nosuch()\n}")

	out, err := run(t, "", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok "+good)
	assert.Contains(t, out, "[x]")

	_, err = run(t, "", "check", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C0101")
	assert.Contains(t, err.Error(), "bad.jslt:2")

	_, err = run(t, "", "check", filepath.Join(dir, "missing.jslt"))
	require.Error(t, err)
}

func TestFunctions(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "", "functions")
	require.NoError(t, err)
	assert.Contains(t, out, "parse-url")
	assert.Contains(t, out, "2+")
	assert.NotContains(t, out, "ext:array")

	out, err = run(t, "", "functions", "--extensions")
	require.NoError(t, err)
	assert.Contains(t, out, "ext:array")
	assert.Contains(t, out, "sort-by")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jslt v"), out)
}

func TestVerbose(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, `{"a": 1}`, "apply", "-v", "-e", ".a")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	quiet, err := newLogger(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	loud, err := newLogger(true)
	require.NoError(t, err)
	assert.True(t, loud.Core().Enabled(zapcore.DebugLevel))
}

func TestArity(t *testing.T) {
	tests := []struct {
		lo, hi int
		want   string
	}{
		{1, 1, "1"},
		{2, 3, "2-3"},
		{2, 1024, "2+"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, arity(fakeCallable{tt.lo, tt.hi}))
		})
	}
}

type fakeCallable struct{ lo, hi int }

func (fakeCallable) Name() string        { return "fake" }
func (f fakeCallable) MinArguments() int { return f.lo }
func (f fakeCallable) MaxArguments() int { return f.hi }
