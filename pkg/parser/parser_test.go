package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/parser"
	"github.com/sandrolain/gojslt/pkg/types"
)

func parse(t *testing.T, src string) *types.ASTNode {
	t.Helper()
	m, err := parser.Parse(src, parser.WithSource("test"))
	require.NoError(t, err, "parse %q", src)
	return m
}

func TestLexerTokens(t *testing.T) {
	l := parser.NewLexer(`$x.foo-bar ."a b"[1:] is-number(1.5e3) t:fn() == != <= // comment
	-2 "s\"q"`, "")
	var got []parser.TokenType
	var values []string
	for {
		tok := l.Next()
		if tok.Type == parser.TokenEOF {
			break
		}
		require.NotEqual(t, parser.TokenError, tok.Type, "lexer error: %v", l.Error())
		got = append(got, tok.Type)
		values = append(values, tok.Value)
	}
	assert.Equal(t, []parser.TokenType{
		parser.TokenVariable, parser.TokenDotKey, parser.TokenDotStr,
		parser.TokenBracketOpen, parser.TokenNumber, parser.TokenColon, parser.TokenBracketClose,
		parser.TokenName, parser.TokenParenOpen, parser.TokenNumber, parser.TokenParenClose,
		parser.TokenPName, parser.TokenParenOpen, parser.TokenParenClose,
		parser.TokenEqual, parser.TokenNotEqual, parser.TokenLessEqual,
		parser.TokenMinus, parser.TokenNumber, parser.TokenString,
	}, got)
	assert.Equal(t, "x", values[0])
	assert.Equal(t, "foo-bar", values[1])
	assert.Equal(t, "a b", values[2])
	assert.Equal(t, "t:fn", values[11])
	assert.Equal(t, `s\"q`, values[19])
}

func TestParsePrecedence(t *testing.T) {
	m := parse(t, `1 + 2 * 3 == 7 and true or false | .x`)
	pipe := m.Body
	require.Equal(t, types.NodeBinary, pipe.Type)
	assert.Equal(t, "|", pipe.Value)

	or := pipe.LHS
	assert.Equal(t, "or", or.Value)
	and := or.LHS
	assert.Equal(t, "and", and.Value)
	eq := and.LHS
	assert.Equal(t, "==", eq.Value)
	plus := eq.LHS
	assert.Equal(t, "+", plus.Value)
	assert.Equal(t, "*", plus.RHS.Value)
}

func TestParseLeftAssociative(t *testing.T) {
	m := parse(t, `10 - 4 - 3`)
	assert.Equal(t, "-", m.Body.Value)
	assert.Equal(t, "-", m.Body.LHS.Value)
	assert.Equal(t, "3", m.Body.RHS.Value)
}

func TestParseNegativeLiteral(t *testing.T) {
	m := parse(t, `[-1, 2 -1]`)
	require.Len(t, m.Body.Expressions, 2)
	assert.Equal(t, types.NodeNumber, m.Body.Expressions[0].Type)
	assert.Equal(t, "-1", m.Body.Expressions[0].Value)
	assert.Equal(t, types.NodeBinary, m.Body.Expressions[1].Type)
}

func TestParseChain(t *testing.T) {
	m := parse(t, `$v.a."b c"[0][1:2]`)
	s := m.Body
	require.Equal(t, types.NodeSlice, s.Type)
	assert.True(t, s.Colon)
	s2 := s.LHS
	require.Equal(t, types.NodeSlice, s2.Type)
	assert.False(t, s2.Colon)
	d := s2.LHS
	assert.Equal(t, "b c", d.Value)
	assert.Equal(t, "a", d.LHS.Value)
	assert.Equal(t, types.NodeVariable, d.LHS.LHS.Type)
}

func TestParseModuleParts(t *testing.T) {
	m := parse(t, `
import "lib.jslt" as lib
let x = 1
def f(a, b) let c = $a $c + $b
let y = 2
lib:g(f($x, $y))
`)
	require.Len(t, m.Imports, 1)
	assert.Equal(t, "lib.jslt", m.Imports[0].Value)
	assert.Equal(t, "lib", m.Imports[0].Prefix)
	require.Len(t, m.Lets, 2)
	require.Len(t, m.Functions, 1)
	f := m.Functions[0]
	assert.Equal(t, []string{"a", "b"}, f.Params)
	require.Len(t, f.Lets, 1)
	assert.Equal(t, "lib", m.Body.Prefix)
	assert.Equal(t, "g", m.Body.Value)
}

func TestParseObject(t *testing.T) {
	m := parse(t, `{let a = 1 "x": $a, "y": 2, * - type, "other" : .,}`)
	o := m.Body
	require.Equal(t, types.NodeObject, o.Type)
	assert.Len(t, o.Lets, 1)
	assert.Len(t, o.Pairs, 2)
	require.NotNil(t, o.Matcher)
	assert.Equal(t, []string{"type", "other"}, o.Matcher.Minus)
}

func TestParseComprehensions(t *testing.T) {
	m := parse(t, `[for (.items) let n = .name $n if (.ok)]`)
	a := m.Body
	require.Equal(t, types.NodeArrayFor, a.Type)
	assert.Len(t, a.Lets, 1)
	assert.NotNil(t, a.Filter)

	m = parse(t, `{for (.) .key : .value if (.value)}`)
	o := m.Body
	require.Equal(t, types.NodeObjectFor, o.Type)
	assert.Equal(t, "key", o.LHS.Value)
	assert.Equal(t, "value", o.RHS.Value)
	assert.NotNil(t, o.Filter)
}

func TestParseIf(t *testing.T) {
	m := parse(t, `if (.a) let x = 1 $x else let y = 2 $y`)
	n := m.Body
	require.Equal(t, types.NodeIf, n.Type)
	assert.Len(t, n.Lets, 1)
	assert.Len(t, n.ElseLets, 1)
	assert.NotNil(t, n.Else)
}

func TestParseTrailingCommas(t *testing.T) {
	m := parse(t, `[1, 2, ]`)
	assert.Len(t, m.Body.Expressions, 2)
	m = parse(t, `{"a": 1, }`)
	assert.Len(t, m.Body.Pairs, 1)
}

func TestParseModuleWithoutBody(t *testing.T) {
	m, err := parser.ParseModule(`def f() 1`)
	require.NoError(t, err)
	assert.Nil(t, m.Body)

	_, err = parser.Parse(`def f() 1`)
	require.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"unterminated string", `"abc`, types.ErrStringNotClosed},
		{"bad character", `.a # .b`, types.ErrInvalidCharacter},
		{"missing paren", `f(1`, types.ErrExpectedToken},
		{"name without call", `foo`, types.ErrExpectedToken},
		{"trailing garbage", `1 2`, types.ErrExpectedToken},
		{"bad number", `1.`, types.ErrInvalidNumber},
		{"matcher not last", `{* : ., "a": 1}`, types.ErrExpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.src, parser.WithSource("t.jslt"))
			require.Error(t, err)
			assert.True(t, types.IsCode(err, tt.code), "got %v", err)
			assert.Contains(t, err.Error(), "t.jslt:1:")
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := parser.Parse("{\n  \"a\": 1\n  \"b\": 2\n}", parser.WithSource("loc.jslt"))
	require.Error(t, err)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	require.NotNil(t, te.Location)
	assert.Equal(t, 3, te.Location.Line)
	assert.Equal(t, 3, te.Location.Column)
}

func TestParseMaxDepth(t *testing.T) {
	src := ""
	for i := 0; i < 50; i++ {
		src += "["
	}
	for i := 0; i < 50; i++ {
		src += "]"
	}
	_, err := parser.Parse(src, parser.WithMaxDepth(20))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrTooDeep))

	_, err = parser.Parse(src)
	require.NoError(t, err)
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		`.`, `{"a": .b, * : .}`, `[for (.) . + 1]`, `def f(x) $x f(1)`, `if (.a) 1 else 2`,
		`import "x" as y y:z()`, `.a[1:-1]`, `// c` + "\n" + `1`,
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		_, _ = parser.Parse(src)
	})
}
