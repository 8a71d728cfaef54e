// Package gojslt is a JSON-to-JSON query and transformation language.
//
// A template is a JSON-like expression that computes an output document from
// an input document. Templates are compiled once into an immutable
// expression graph and can then be applied to many inputs, concurrently if
// needed.
//
// # Quick Start
//
//	// One-off transformation
//	out, err := gojslt.ApplyJSON(`{"id": .user.id, * : .}`, []byte(`{"user": {"id": 1}}`))
//
//	// Compile once, apply many times
//	expr, err := gojslt.Compile(`[for (.items) .price if (.price > 100)]`)
//	out1, _ := expr.Apply(input1)
//	out2, _ := expr.Apply(input2)
//
//	// With options
//	expr, err := gojslt.Compile(src,
//	    gojslt.WithSource("orders.jslt"),
//	    gojslt.WithFunctions(myFunctions...),
//	)
//
// # More Information
//
//   - Values: github.com/sandrolain/gojslt/pkg/value
//   - Compiler: github.com/sandrolain/gojslt/pkg/compiler
//   - Evaluator: github.com/sandrolain/gojslt/pkg/evaluator
//   - Extension functions: github.com/sandrolain/gojslt/pkg/functions
//   - Errors: github.com/sandrolain/gojslt/pkg/types
package gojslt

import (
	"fmt"

	"github.com/sandrolain/gojslt/pkg/cache"
	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/value"
)

// Version returns the current version of gojslt.
func Version() string {
	return "v0.1.0-dev"
}

// Expression is a compiled template. It is safe for concurrent use.
type Expression = evaluator.Expression

// Option configures compilation.
type Option = compiler.Option

// Compilation options, see the compiler package.
var (
	WithSource                 = compiler.WithSource
	WithFunctions              = compiler.WithFunctions
	WithNamedModule            = compiler.WithNamedModule
	WithResourceResolver       = compiler.WithResourceResolver
	WithObjectFilter           = compiler.WithObjectFilter
	WithObjectFilterExpression = compiler.WithObjectFilterExpression
	WithLogger                 = compiler.WithLogger
	WithMaxCallDepth           = compiler.WithMaxCallDepth
	WithMaxDepth               = compiler.WithMaxDepth
	WithoutOptimizer           = compiler.WithoutOptimizer
)

// CacheSize is the number of templates kept by Apply and ApplyJSON.
const CacheSize = 256

var compiled = cache.New[string, *Expression](CacheSize, cache.LRU)

// Compile compiles a template for repeated application.
//
// Example:
//
//	expr, err := gojslt.Compile(`{"name": .name}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := expr.Apply(input)
func Compile(template string, opts ...Option) (*Expression, error) {
	return compiler.Compile(template, opts...)
}

// MustCompile is like Compile but panics if the template cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(template string, opts ...Option) *Expression {
	expr, err := Compile(template, opts...)
	if err != nil {
		panic(fmt.Sprintf("gojslt: Compile(%q): %v", template, err))
	}
	return expr
}

// cachedCompile compiles template with default options, reusing earlier
// compilations of the same text.
func cachedCompile(template string) (*Expression, error) {
	return compiled.GetOrCreate(template, func() (*Expression, error) {
		return Compile(template)
	})
}

// Apply compiles template with default options and applies it to input.
// Compiled templates are cached, so calling Apply in a loop with the same
// template compiles it once.
func Apply(template string, input value.Value) (value.Value, error) {
	expr, err := cachedCompile(template)
	if err != nil {
		return nil, err
	}
	return expr.Apply(input)
}

// ApplyJSON is Apply over JSON text. Empty input is treated as null.
func ApplyJSON(template string, input []byte) ([]byte, error) {
	in := value.Null
	if len(input) > 0 {
		var err error
		if in, err = value.ParseJSON(input); err != nil {
			return nil, err
		}
	}
	out, err := Apply(template, in)
	if err != nil {
		return nil, err
	}
	return value.MarshalJSON(out), nil
}

// ApplyNative is Apply over plain Go values, such as those produced by
// encoding/json.
func ApplyNative(template string, input any) (any, error) {
	in, err := value.FromNative(input)
	if err != nil {
		return nil, err
	}
	out, err := Apply(template, in)
	if err != nil {
		return nil, err
	}
	return value.ToNative(out), nil
}

// ClearCache drops the templates cached by Apply.
func ClearCache() {
	compiled.Clear()
}
