package evaluator

import (
	"log/slog"

	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func evalCall(n *Call, s *Scope, input value.Value) (value.Value, error) {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(a, s, input)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if n.Scoped != nil {
		v, err := n.Scoped.CallScoped(s, input, args)
		if err != nil {
			return nil, locate(err, n.loc)
		}
		return v, nil
	}
	if n.Function == nil {
		return nil, types.Errorf(types.ErrNoSuchFunction, n.loc, "No such function: '%s'", n.Name)
	}

	v, err := n.Function.Call(input, args)
	if err != nil {
		return nil, locate(err, n.loc)
	}
	if v == nil {
		if s.logger != nil {
			s.logger.Debug("function returned no value", slog.String("function", n.Name))
		}
		return value.Null, nil
	}
	return v, nil
}

// FunctionDecl is a function declared in a template with def.
type FunctionDecl struct {
	FuncName   string
	Params     []string
	ParamInfos []*VariableInfo
	Lets       []*Let
	Body       Node
	// FrameSize is the number of slots of the function frame.
	FrameSize int
	Loc       *types.Location
}

// NewFunctionDecl creates a function declaration.
func NewFunctionDecl(name string, params []string, lets []*Let, body Node, loc *types.Location) *FunctionDecl {
	return &FunctionDecl{FuncName: name, Params: params, Lets: lets, Body: body, Loc: loc}
}

func (f *FunctionDecl) Name() string      { return f.FuncName }
func (f *FunctionDecl) MinArguments() int { return len(f.Params) }
func (f *FunctionDecl) MaxArguments() int { return len(f.Params) }

// CallScoped runs the function body in a fresh function frame. The body
// sees the caller's input as its context.
func (f *FunctionDecl) CallScoped(s *Scope, input value.Value, args []value.Value) (value.Value, error) {
	if err := s.EnterFunction(f.FrameSize); err != nil {
		return nil, locate(err, f.Loc)
	}
	defer s.LeaveFunction()

	for i, a := range args {
		s.Set(f.ParamInfos[i].Slot, a)
	}
	if err := evalLets(s, input, f.Lets); err != nil {
		return nil, err
	}
	return Eval(f.Body, s, input)
}

// ModuleFunction calls the body of an imported template as a one-argument
// function: the argument becomes the module's input.
type ModuleFunction struct {
	Prefix string
	Module *Expression
}

func (m *ModuleFunction) Name() string    { return m.Prefix }
func (*ModuleFunction) MinArguments() int { return 1 }
func (*ModuleFunction) MaxArguments() int { return 1 }

// CallScoped evaluates the module body. The module's lets are evaluated at
// the start of every top-level evaluation, so their slots are already set.
func (m *ModuleFunction) CallScoped(s *Scope, _ value.Value, args []value.Value) (value.Value, error) {
	if m.Module.Body == nil {
		return nil, types.Errorf(types.ErrModuleHasNoBody, nil, "Module '%s' has no body", m.Prefix)
	}
	return Eval(m.Module.Body, s, value.OrNull(args[0]))
}
