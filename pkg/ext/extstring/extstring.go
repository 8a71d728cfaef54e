// Package extstring provides string functions beyond the builtins. A null
// string argument yields null.
//
//	expr, err := gojslt.Compile(`camel-case(.title)`, gojslt.WithFunctions(extstring.All()...))
package extstring

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/gojslt/pkg/ext/extutil"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

// URI is the name the string module is imported by.
const URI = "ext:string"

// All returns every function of the package.
func All() []functions.Function {
	return []functions.Function{
		IndexOf(),
		LastIndexOf(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Repeat(),
		PadLeft(),
		PadRight(),
		Words(),
		Template(),
	}
}

// Module returns the functions of All as an importable module.
func Module() *functions.MapModule {
	return extutil.Module(All())
}

// stringFunc defines a one-argument function over a string.
func stringFunc(name string, fn func(string) string) *functions.FunctionDef {
	return functions.Define(name, 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		return value.Text(fn(s)), nil
	})
}

// IndexOf returns index-of-string(str, search [, start]): the rune offset of
// the first occurrence of search at or after start, or -1.
func IndexOf() *functions.FunctionDef {
	const name = "index-of-string"
	return functions.Define(name, 2, 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		search, _, err := extutil.Text(name, args[1])
		if err != nil {
			return nil, err
		}
		start := 0
		if len(args) > 2 {
			if start, _, err = extutil.Int(name, args[2]); err != nil {
				return nil, err
			}
		}
		runes := []rune(s)
		if start < 0 {
			start = 0
		}
		if start > len(runes) {
			return value.Int(-1), nil
		}
		rest := string(runes[start:])
		idx := strings.Index(rest, search)
		if idx < 0 {
			return value.Int(-1), nil
		}
		return value.Int(int32(start + utf8.RuneCountInString(rest[:idx]))), nil
	})
}

// LastIndexOf returns last-index-of-string(str, search).
func LastIndexOf() *functions.FunctionDef {
	const name = "last-index-of-string"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		search, _, err := extutil.Text(name, args[1])
		if err != nil {
			return nil, err
		}
		idx := strings.LastIndex(s, search)
		if idx < 0 {
			return value.Int(-1), nil
		}
		return value.Int(int32(utf8.RuneCountInString(s[:idx]))), nil
	})
}

// Capitalize uppercases the first character and lowercases the rest.
func Capitalize() *functions.FunctionDef {
	return stringFunc("capitalize", func(s string) string {
		if s == "" {
			return s
		}
		runes := []rune(strings.ToLower(s))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

// TitleCase uppercases the first character of each space-separated word.
func TitleCase() *functions.FunctionDef {
	return stringFunc("title-case", func(s string) string {
		runes := []rune(strings.ToLower(s))
		start := true
		for i, r := range runes {
			if unicode.IsSpace(r) {
				start = true
				continue
			}
			if start {
				runes[i] = unicode.ToUpper(r)
				start = false
			}
		}
		return string(runes)
	})
}

var wordBoundary = regexp.MustCompile(`[_\-\s]+|([a-z0-9])([A-Z])`)

// splitWords splits camelCase, snake_case, kebab-case and spaced text into
// words.
func splitWords(s string) []string {
	expanded := wordBoundary.ReplaceAllString(s, "$1 $2")
	return strings.Fields(expanded)
}

// CamelCase returns camel-case(str).
func CamelCase() *functions.FunctionDef {
	return stringFunc("camel-case", func(s string) string {
		words := splitWords(s)
		var sb strings.Builder
		for i, w := range words {
			w = strings.ToLower(w)
			if i > 0 {
				runes := []rune(w)
				runes[0] = unicode.ToUpper(runes[0])
				w = string(runes)
			}
			sb.WriteString(w)
		}
		return sb.String()
	})
}

func joinWords(sep string) func(string) string {
	return func(s string) string {
		words := splitWords(s)
		for i, w := range words {
			words[i] = strings.ToLower(w)
		}
		return strings.Join(words, sep)
	}
}

// SnakeCase returns snake-case(str).
func SnakeCase() *functions.FunctionDef {
	return stringFunc("snake-case", joinWords("_"))
}

// KebabCase returns kebab-case(str).
func KebabCase() *functions.FunctionDef {
	return stringFunc("kebab-case", joinWords("-"))
}

// Repeat returns repeat(str, n).
func Repeat() *functions.FunctionDef {
	const name = "repeat"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		n, _, err := extutil.Int(name, args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, extutil.ArgError(name, "count must not be negative, got %d", n)
		}
		return value.Text(strings.Repeat(s, n)), nil
	})
}

func pad(name string, left bool) *functions.FunctionDef {
	return functions.Define(name, 2, 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		width, _, err := extutil.Int(name, args[1])
		if err != nil {
			return nil, err
		}
		fill := " "
		if len(args) > 2 {
			if fill, _, err = extutil.Text(name, args[2]); err != nil {
				return nil, err
			}
			if fill == "" {
				return nil, extutil.ArgError(name, "padding must not be empty")
			}
		}
		missing := width - len([]rune(s))
		if missing <= 0 {
			return value.Text(s), nil
		}
		padding := []rune(strings.Repeat(fill, missing))[:missing]
		if left {
			return value.Text(string(padding) + s), nil
		}
		return value.Text(s + string(padding)), nil
	})
}

// PadLeft returns pad-left(str, width [, fill]).
func PadLeft() *functions.FunctionDef { return pad("pad-left", true) }

// PadRight returns pad-right(str, width [, fill]).
func PadRight() *functions.FunctionDef { return pad("pad-right", false) }

// Words splits a string on whitespace.
func Words() *functions.FunctionDef {
	const name = "words"
	return functions.Define(name, 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		fields := strings.Fields(s)
		out := make(value.Array, len(fields))
		for i, f := range fields {
			out[i] = value.Text(f)
		}
		return out, nil
	})
}

var placeholder = regexp.MustCompile(`\{\{\s*([\w-]+)\s*\}\}`)

// Template returns template(str, bindings): {{key}} placeholders are replaced
// with the values of the bindings object. Strings are inserted as they are,
// other values as JSON. Unknown placeholders are left untouched.
func Template() *functions.FunctionDef {
	const name = "template"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		tmpl, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		bindings, ok, err := extutil.Object(name, args[1])
		if err != nil {
			return nil, err
		}
		if !ok {
			return value.Text(tmpl), nil
		}
		out := placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
			key := placeholder.FindStringSubmatch(match)[1]
			v, found := bindings.Get(key)
			if !found {
				return match
			}
			if t, isText := v.(value.Text); isText {
				return string(t)
			}
			return value.String(v)
		})
		return value.Text(out), nil
	})
}
