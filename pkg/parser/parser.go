// Package parser turns template source text into a raw syntax tree.
//
// The parser is a hand-written recursive descent parser over the token
// stream produced by Lexer. It reports errors as *types.Error values carrying
// the source location of the offending token.
//
// # Example
//
//	module, err := parser.Parse(`{"id": .id, * : .}`, parser.WithSource("inline"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	body := module.Body
package parser

import (
	"github.com/sandrolain/gojslt/pkg/types"
)

// Parse parses a main template. The template must end with a body expression.
func Parse(source string, opts ...Option) (*types.ASTNode, error) {
	p := NewParser(source, opts...)
	return p.Parse(true)
}

// ParseModule parses an imported module. A module may consist of lets and
// function declarations only.
func ParseModule(source string, opts ...Option) (*types.ASTNode, error) {
	p := NewParser(source, opts...)
	return p.Parse(false)
}

// Option configures parsing behavior.
type Option func(*Options)

// Options holds parser configuration.
type Options struct {
	// Source names the resource in error locations.
	Source string
	// MaxDepth limits expression nesting to prevent stack exhaustion.
	MaxDepth int
}

// WithSource sets the resource name reported in error locations.
func WithSource(name string) Option {
	return func(opts *Options) {
		opts.Source = name
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}
