package compiler

import (
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// lower turns a syntax tree node into an expression graph node. A nil
// syntax node lowers to a nil graph node.
func (u *unit) lower(n *types.ASTNode) (evaluator.Node, error) {
	if n == nil {
		return nil, nil
	}
	loc := n.Loc()

	switch n.Type {
	case types.NodeNull:
		return evaluator.NewLiteral(value.Null, loc), nil

	case types.NodeBoolean:
		return evaluator.NewLiteral(value.Boolean(n.Value == "true"), loc), nil

	case types.NodeString:
		return evaluator.NewLiteral(value.Text(n.Value), loc), nil

	case types.NodeNumber:
		v, err := value.ParseNumberLiteral(n.Value)
		if err != nil {
			return nil, types.AsError(err, types.ErrInvalidNumber, loc)
		}
		return evaluator.NewLiteral(v, loc), nil

	case types.NodeDot:
		parent, err := u.lower(n.LHS)
		if err != nil {
			return nil, err
		}
		return evaluator.NewDot(n.Value, parent, loc), nil

	case types.NodeSlice:
		return u.lowerSlice(n)

	case types.NodeVariable:
		return evaluator.NewVariable(n.Value, loc), nil

	case types.NodeCall:
		return u.lowerCall(n)

	case types.NodeArray:
		elements, err := u.lowerAll(n.Expressions)
		if err != nil {
			return nil, err
		}
		return evaluator.NewArrayCons(elements, loc), nil

	case types.NodeArrayFor:
		seq, lets, body, cond, err := u.lowerFor(n, n.Body)
		if err != nil {
			return nil, err
		}
		return evaluator.NewArrayFor(seq, lets, body, cond, loc), nil

	case types.NodeObjectFor:
		seq, lets, key, cond, err := u.lowerFor(n, n.LHS)
		if err != nil {
			return nil, err
		}
		val, err := u.lower(n.RHS)
		if err != nil {
			return nil, err
		}
		return evaluator.NewObjectFor(seq, lets, key, val, cond, u.session.filter, loc), nil

	case types.NodeObject:
		return u.lowerObject(n)

	case types.NodeBinary:
		return u.lowerBinary(n)

	case types.NodeIf:
		return u.lowerIf(n)
	}
	return nil, types.Errorf(types.ErrSyntaxError, loc, "Unexpected %s in expression", n.Type)
}

func (u *unit) lowerAll(nodes []*types.ASTNode) ([]evaluator.Node, error) {
	out := make([]evaluator.Node, len(nodes))
	for i, n := range nodes {
		l, err := u.lower(n)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

func (u *unit) lowerLets(nodes []*types.ASTNode) ([]*evaluator.Let, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	lets := make([]*evaluator.Let, len(nodes))
	for i, n := range nodes {
		v, err := u.lower(n.Body)
		if err != nil {
			return nil, err
		}
		lets[i] = evaluator.NewLet(n.Value, v, n.Loc())
	}
	return lets, nil
}

func (u *unit) lowerSlice(n *types.ASTNode) (evaluator.Node, error) {
	parent, err := u.lower(n.LHS)
	if err != nil {
		return nil, err
	}
	var left, right evaluator.Node
	if len(n.Expressions) > 0 {
		if left, err = u.lower(n.Expressions[0]); err != nil {
			return nil, err
		}
	}
	if len(n.Expressions) > 1 {
		if right, err = u.lower(n.Expressions[1]); err != nil {
			return nil, err
		}
	}
	return evaluator.NewSlice(parent, left, right, n.Colon, n.Loc()), nil
}

// lowerFor lowers the parts shared by both comprehensions: the sequence,
// the lets, the produced expression and the filter.
func (u *unit) lowerFor(n, produce *types.ASTNode) (seq evaluator.Node, lets []*evaluator.Let, body, cond evaluator.Node, err error) {
	if seq, err = u.lower(n.Condition); err != nil {
		return
	}
	if lets, err = u.lowerLets(n.Lets); err != nil {
		return
	}
	if body, err = u.lower(produce); err != nil {
		return
	}
	cond, err = u.lower(n.Filter)
	return
}

func (u *unit) lowerObject(n *types.ASTNode) (evaluator.Node, error) {
	lets, err := u.lowerLets(n.Lets)
	if err != nil {
		return nil, err
	}
	pairs := make([]*evaluator.Pair, len(n.Pairs))
	for i, p := range n.Pairs {
		key, err := u.lower(p.LHS)
		if err != nil {
			return nil, err
		}
		val, err := u.lower(p.RHS)
		if err != nil {
			return nil, err
		}
		pairs[i] = evaluator.NewPair(key, val, p.Loc())
	}

	var matcher *evaluator.Matcher
	if n.Matcher != nil {
		val, err := u.lower(n.Matcher.Body)
		if err != nil {
			return nil, err
		}
		matcher = evaluator.NewMatcher(n.Matcher.Minus, val, n.Matcher.Loc())
	}
	return evaluator.NewObjectCons(lets, pairs, matcher, u.session.filter, n.Loc())
}

func (u *unit) lowerBinary(n *types.ASTNode) (evaluator.Node, error) {
	left, err := u.lower(n.LHS)
	if err != nil {
		return nil, err
	}
	right, err := u.lower(n.RHS)
	if err != nil {
		return nil, err
	}

	loc := n.Loc()
	switch n.Value {
	case "|":
		return evaluator.NewPipe(left, right, loc), nil
	case "and":
		return evaluator.NewAnd(left, right, loc), nil
	case "or":
		return evaluator.NewOr(left, right, loc), nil
	}
	op, ok := evaluator.LookupOperator(n.Value)
	if !ok {
		return nil, types.Errorf(types.ErrSyntaxError, loc, "Unknown operator '%s'", n.Value)
	}
	return evaluator.NewBinary(op, left, right, loc), nil
}

func (u *unit) lowerIf(n *types.ASTNode) (evaluator.Node, error) {
	test, err := u.lower(n.Condition)
	if err != nil {
		return nil, err
	}
	lets, err := u.lowerLets(n.Lets)
	if err != nil {
		return nil, err
	}
	then, err := u.lower(n.Body)
	if err != nil {
		return nil, err
	}
	elseLets, err := u.lowerLets(n.ElseLets)
	if err != nil {
		return nil, err
	}
	orElse, err := u.lower(n.Else)
	if err != nil {
		return nil, err
	}
	return evaluator.NewIf(test, lets, then, elseLets, orElse, n.Loc()), nil
}

// lowerCall creates a call node. Macros and prefixed calls are bound right
// away; other calls wait until every function of the unit is known.
func (u *unit) lowerCall(n *types.ASTNode) (evaluator.Node, error) {
	args, err := u.lowerAll(n.Expressions)
	if err != nil {
		return nil, err
	}
	loc := n.Loc()

	if n.Prefix != "" {
		mod, ok := u.modules[n.Prefix]
		if !ok {
			return nil, types.Errorf(types.ErrNoSuchModule, loc, "No such module '%s'", n.Prefix)
		}
		target := mod.Callable(n.Value)
		if target == nil {
			return nil, types.Errorf(types.ErrNoSuchFunction, loc, "No such function '%s' in module '%s'", n.Value, n.Prefix)
		}
		name := n.Prefix + ":" + n.Value
		if m, ok := target.(evaluator.Macro); ok {
			return evaluator.NewMacroCall(name, m, args, loc)
		}
		call := evaluator.NewCall(name, args, loc)
		if err := u.bind(call, target); err != nil {
			return nil, err
		}
		return call, nil
	}

	if m, ok := evaluator.BuiltinMacro(n.Value); ok {
		return evaluator.NewMacroCall(n.Value, m, args, loc)
	}
	call := evaluator.NewCall(n.Value, args, loc)
	u.pending = append(u.pending, call)
	return call, nil
}
