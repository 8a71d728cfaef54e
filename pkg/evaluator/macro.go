package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/value"
)

// MacroDef is a Macro assembled from a name, an arity range and a Go
// function.
type MacroDef struct {
	MacroName string
	MinArgs   int
	MaxArgs   int
	Fn        func(s *Scope, input value.Value, args []Node) (value.Value, error)
}

// DefineMacro builds a MacroDef.
func DefineMacro(name string, minArgs, maxArgs int, fn func(s *Scope, input value.Value, args []Node) (value.Value, error)) *MacroDef {
	return &MacroDef{MacroName: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}
}

func (m *MacroDef) Name() string      { return m.MacroName }
func (m *MacroDef) MinArguments() int { return m.MinArgs }
func (m *MacroDef) MaxArguments() int { return m.MaxArgs }

// Call implements Macro.
func (m *MacroDef) Call(s *Scope, input value.Value, args []Node) (value.Value, error) {
	return m.Fn(s, input, args)
}

// macroFallback evaluates its arguments left to right and returns the first
// one that has a value. Later arguments are not evaluated.
func macroFallback(s *Scope, input value.Value, args []Node) (value.Value, error) {
	for _, a := range args {
		v, err := Eval(a, s, input)
		if err != nil {
			return nil, err
		}
		if value.IsValue(v) {
			return v, nil
		}
	}
	return value.Null, nil
}
