package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/value"
)

// ObjectFilter decides which key/value pairs are kept when objects are
// built. It is consulted for static pairs, pairs copied by a matcher and
// pairs produced by object comprehensions.
type ObjectFilter interface {
	Accept(v value.Value) bool
}

// FilterFunc adapts a function to the ObjectFilter interface.
type FilterFunc func(v value.Value) bool

// Accept implements ObjectFilter.
func (f FilterFunc) Accept(v value.Value) bool { return f(v) }

var (
	// DefaultFilter drops null values, empty arrays and empty objects.
	DefaultFilter ObjectFilter = FilterFunc(value.IsValue)

	// AcceptAll keeps every pair.
	AcceptAll ObjectFilter = FilterFunc(func(value.Value) bool { return true })
)

// ExpressionFilter keeps a pair when a compiled template, applied to the
// value, yields a true value. A failing evaluation drops the pair.
type ExpressionFilter struct {
	Expr *Expression
}

// Accept implements ObjectFilter.
func (f *ExpressionFilter) Accept(v value.Value) bool {
	res, err := f.Expr.Apply(v)
	if err != nil {
		return false
	}
	return value.IsTrue(res)
}
