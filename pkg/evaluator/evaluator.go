// Package evaluator implements the compiled form of templates and the engine
// that evaluates it.
//
// A compiled template is a graph of Node values built by the compiler
// package. Evaluation is a synchronous recursive walk over that graph with a
// Scope holding variable slots. The graph is immutable once compiled, so an
// Expression may be applied concurrently from many goroutines; each call
// gets a fresh Scope.
//
// # Example
//
//	expr, err := compiler.Compile(`{"id": .id, * : .}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := expr.Apply(input)
//
// # Concurrency
//
// ApplyAll evaluates many inputs with a bounded number of goroutines.
//
//	outputs, err := expr.ApplyAll(ctx, inputs, 8)
package evaluator

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

// Macro is a callable that receives its arguments unevaluated and decides
// itself which to evaluate, and against which input.
type Macro interface {
	functions.Callable
	Call(s *Scope, input value.Value, args []Node) (value.Value, error)
}

// Expression is a compiled template or module.
//
// The compiler fills in the exported fields; they must be treated as
// read-only once compilation has finished.
type Expression struct {
	// Source names the template in error locations.
	Source string
	// Lets are the top-level variable bindings.
	Lets []*Let
	// Functions are the functions declared with def, by name.
	Functions map[string]*FunctionDecl
	// Body is the template expression; nil for modules without one.
	Body Node
	// Modules are the imported template modules, in dependency order. Their
	// lets are evaluated at the start of every evaluation.
	Modules []*Expression
	// FrameSize is the size of the global frame.
	FrameSize int
	// ParamSlots maps external variable names to their global slots.
	ParamSlots map[string]Slot
	// MaxCallDepth bounds nested function calls; zero uses the default.
	MaxCallDepth int
	// Logger receives debug events during evaluation. May be nil.
	Logger *slog.Logger
}

// Apply evaluates the template against input. A nil input is treated as null.
func (e *Expression) Apply(input value.Value) (value.Value, error) {
	return e.ApplyScope(e.NewScope(nil), input)
}

// ApplyWithVariables evaluates the template with values for the variables
// the template uses without declaring them.
func (e *Expression) ApplyWithVariables(vars map[string]value.Value, input value.Value) (value.Value, error) {
	return e.ApplyScope(e.NewScope(vars), input)
}

// NewScope creates a scope sized for this expression, holding vars in the
// slots of the matching external parameters.
func (e *Expression) NewScope(vars map[string]value.Value) *Scope {
	s := MakeScope(vars, e.FrameSize, e.ParamSlots)
	if e.MaxCallDepth != 0 {
		s.SetMaxCallDepth(e.MaxCallDepth)
	}
	s.SetLogger(e.Logger)
	return s
}

// ApplyScope evaluates the template in a prepared scope.
func (e *Expression) ApplyScope(s *Scope, input value.Value) (value.Value, error) {
	input = value.OrNull(input)

	for _, m := range e.Modules {
		if err := evalLets(s, input, m.Lets); err != nil {
			return nil, err
		}
	}
	if err := evalLets(s, input, e.Lets); err != nil {
		return nil, err
	}
	if e.Body == nil {
		return value.Null, nil
	}
	return Eval(e.Body, s, input)
}

// ApplyAll evaluates the template against every input using at most workers
// goroutines (all of them when workers <= 0). Results keep the input order.
// The first error cancels the remaining work.
func (e *Expression) ApplyAll(ctx context.Context, inputs []value.Value, workers int) ([]value.Value, error) {
	out := make([]value.Value, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := e.Apply(in)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Callable returns the declared function with the given name, so that an
// imported template can serve as a module.
func (e *Expression) Callable(name string) functions.Callable {
	if f, ok := e.Functions[name]; ok {
		return f
	}
	return nil
}

// Parameters returns the names of the external variables in sorted order.
func (e *Expression) Parameters() []string {
	names := make([]string, 0, len(e.ParamSlots))
	for name := range e.ParamSlots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StackFrameSize returns the size of the global frame.
func (e *Expression) StackFrameSize() int {
	return e.FrameSize
}

// String renders the template body.
func (e *Expression) String() string {
	if e.Body == nil {
		return ""
	}
	return e.Body.String()
}

// Dump renders the whole compilation unit: lets, declared functions and
// body, one per line.
func (e *Expression) Dump() string {
	var sb strings.Builder
	for _, let := range e.Lets {
		sb.WriteString(let.String())
		sb.WriteByte('\n')
	}
	names := make([]string, 0, len(e.Functions))
	for name := range e.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(e.Functions[name].String())
		sb.WriteByte('\n')
	}
	sb.WriteString(e.String())
	return sb.String()
}
