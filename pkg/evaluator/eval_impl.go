package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// Eval evaluates n against input using scope s.
//
// This is the single dispatch point of the evaluator; macros and extension
// modules call it to evaluate the argument expressions they receive.
func Eval(n Node, s *Scope, input value.Value) (value.Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Dot:
		return evalDot(n, s, input)
	case *Slice:
		return evalSlice(n, s, input)
	case *Variable:
		return evalVariable(n, s)
	case *ArrayCons:
		return evalArray(n, s, input)
	case *ObjectCons:
		return evalObject(n, s, input)
	case *ArrayFor:
		return evalArrayFor(n, s, input)
	case *ObjectFor:
		return evalObjectFor(n, s, input)
	case *If:
		return evalIf(n, s, input)
	case *Pipe:
		left, err := Eval(n.Left, s, input)
		if err != nil {
			return nil, err
		}
		return Eval(n.Right, s, left)
	case *And:
		return evalAnd(n, s, input)
	case *Or:
		return evalOr(n, s, input)
	case *Binary:
		return evalBinary(n, s, input)
	case *Call:
		return evalCall(n, s, input)
	case *MacroCall:
		v, err := n.Macro.Call(s, input, n.Args)
		if err != nil {
			return nil, locate(err, n.loc)
		}
		return value.OrNull(v), nil
	case nil:
		return value.Null, nil
	}
	return nil, types.Errorf(types.ErrTypeMismatch, n.Location(), "INTERNAL ERROR: unknown node %T", n)
}

// evalLets evaluates each let in order and stores it in its slot.
func evalLets(s *Scope, input value.Value, lets []*Let) error {
	for _, let := range lets {
		v, err := Eval(let.Value, s, input)
		if err != nil {
			return err
		}
		s.Set(let.Info.Slot, v)
	}
	return nil
}

func evalVariable(n *Variable, s *Scope) (value.Value, error) {
	if n.Info == nil {
		return nil, types.Errorf(types.ErrNoSuchVariable, n.loc, "No such variable '%s'", n.Name)
	}
	v, ok := s.Get(n.Info.Slot)
	if !ok {
		return nil, types.Errorf(types.ErrNoSuchVariable, n.loc, "No such variable '%s'", n.Name)
	}
	return v, nil
}

func evalIf(n *If, s *Scope, input value.Value) (value.Value, error) {
	test, err := Eval(n.Test, s, input)
	if err != nil {
		return nil, err
	}
	if value.IsTrue(test) {
		if err := evalLets(s, input, n.Lets); err != nil {
			return nil, err
		}
		return Eval(n.Then, s, input)
	}
	if n.Else == nil {
		return value.Null, nil
	}
	if err := evalLets(s, input, n.ElseLets); err != nil {
		return nil, err
	}
	return Eval(n.Else, s, input)
}

func evalAnd(n *And, s *Scope, input value.Value) (value.Value, error) {
	left, err := Eval(n.Left, s, input)
	if err != nil {
		return nil, err
	}
	if !value.IsTrue(left) {
		return value.False, nil
	}
	right, err := Eval(n.Right, s, input)
	if err != nil {
		return nil, err
	}
	return value.Boolean(value.IsTrue(right)), nil
}

func evalOr(n *Or, s *Scope, input value.Value) (value.Value, error) {
	left, err := Eval(n.Left, s, input)
	if err != nil {
		return nil, err
	}
	if value.IsTrue(left) {
		return value.True, nil
	}
	right, err := Eval(n.Right, s, input)
	if err != nil {
		return nil, err
	}
	return value.Boolean(value.IsTrue(right)), nil
}

// sequence converts the value a comprehension iterates over. ok is false
// for null, which short-circuits the comprehension.
func sequence(v value.Value, what string, loc *types.Location) (value.Array, bool, error) {
	switch x := value.OrNull(v).(type) {
	case value.Array:
		return x, true, nil
	case *value.Object:
		return value.ConvertObjectToArray(x), true, nil
	}
	if value.IsNull(v) {
		return nil, false, nil
	}
	return nil, false, types.Errorf(types.ErrNotIterable, loc, "%s can't iterate over %s", what, value.String(v))
}

func evalArrayFor(n *ArrayFor, s *Scope, input value.Value) (value.Value, error) {
	seqv, err := Eval(n.Seq, s, input)
	if err != nil {
		return nil, err
	}
	seq, ok, err := sequence(seqv, "For loop", n.loc)
	if err != nil || !ok {
		return value.Null, err
	}

	out := make(value.Array, 0, len(seq))
	for _, el := range seq {
		// lets depend on the element, so they are evaluated for each one
		if err := evalLets(s, el, n.Lets); err != nil {
			return nil, err
		}
		if n.Cond != nil {
			keep, err := Eval(n.Cond, s, el)
			if err != nil {
				return nil, err
			}
			if !value.IsTrue(keep) {
				continue
			}
		}
		v, err := Eval(n.Body, s, el)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// locate attaches loc to errors that have no location yet. Errors from
// extension code are wrapped as extension failures.
func locate(err error, loc *types.Location) error {
	if err == nil {
		return nil
	}
	return types.AsError(err, types.ErrExtensionFailure, loc)
}
