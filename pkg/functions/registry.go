// Package functions defines the contract for extension functions and modules.
//
// Host code can make additional functions available to templates, either as
// plain global functions or grouped into a named module that templates import
// with a prefix.
//
// # Example
//
//	greet := functions.Define("greet", 1, 1, func(input value.Value, args []value.Value) (value.Value, error) {
//	    return value.Text("Hello, " + value.String(args[0])), nil
//	})
//	expr, err := gojslt.Compile(`greet(.name)`, gojslt.WithFunctions(greet))
package functions

import (
	"sort"

	"github.com/sandrolain/gojslt/pkg/value"
)

// Callable is anything a template can call by name: a Function, or a macro
// provided by the evaluator.
type Callable interface {
	// Name is the name templates use to call it.
	Name() string
	// MinArguments is the smallest accepted argument count.
	MinArguments() int
	// MaxArguments is the largest accepted argument count.
	MaxArguments() int
}

// Function is a callable receiving fully evaluated arguments.
//
// Call may return a nil Value, which is treated as null. A non-nil error
// aborts the evaluation in progress.
type Function interface {
	Callable
	Call(input value.Value, args []value.Value) (value.Value, error)
}

// Module is a named set of callables that templates reach through an import
// prefix, as in `import "name" as p` followed by `p:fn(...)`.
type Module interface {
	// Callable returns the callable with the given name, or nil.
	Callable(name string) Callable
}

// Impl is the signature of a function body.
type Impl func(input value.Value, args []value.Value) (value.Value, error)

// FunctionDef is a Function assembled from a name, an arity range and a Go
// function.
type FunctionDef struct {
	// FuncName is the name templates use to call the function.
	FuncName string
	// MinArgs and MaxArgs bound the argument count, inclusive.
	MinArgs int
	MaxArgs int
	// Fn is the implementation.
	Fn Impl
}

// Define builds a FunctionDef.
func Define(name string, minArgs, maxArgs int, fn Impl) *FunctionDef {
	return &FunctionDef{FuncName: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}
}

// Name implements Callable.
func (f *FunctionDef) Name() string { return f.FuncName }

// MinArguments implements Callable.
func (f *FunctionDef) MinArguments() int { return f.MinArgs }

// MaxArguments implements Callable.
func (f *FunctionDef) MaxArguments() int { return f.MaxArgs }

// Call implements Function.
func (f *FunctionDef) Call(input value.Value, args []value.Value) (value.Value, error) {
	return f.Fn(input, args)
}

// MapModule is a Module backed by a map of callables.
type MapModule struct {
	callables map[string]Callable
}

// NewModule creates a module exposing the given callables under their names.
// A later callable replaces an earlier one with the same name.
func NewModule(callables ...Callable) *MapModule {
	m := &MapModule{callables: make(map[string]Callable, len(callables))}
	for _, c := range callables {
		m.callables[c.Name()] = c
	}
	return m
}

// Callable implements Module.
func (m *MapModule) Callable(name string) Callable {
	return m.callables[name]
}

// Names returns the callable names in sorted order.
func (m *MapModule) Names() []string {
	names := make([]string, 0, len(m.callables))
	for name := range m.callables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
