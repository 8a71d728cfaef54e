package compiler

import (
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/types"
)

// matchContext tells what object a matcher at some position copies from.
// A nil dot is the current input. When fail is set, matchers are not
// allowed at that position and fail names the construct in the way.
type matchContext struct {
	dot  evaluator.Node
	fail string
}

var freshContext = matchContext{}

func failContext(reason string) matchContext {
	return matchContext{fail: reason}
}

// child is the context of the value of a pair with a static key.
func (c matchContext) child(key string, loc *types.Location) matchContext {
	if c.fail != "" {
		return c
	}
	return matchContext{dot: evaluator.NewDot(key, c.dot, loc)}
}

// computeMatchContexts annotates every object matcher of a compilation
// unit with the expression that finds its context object.
func computeMatchContexts(expr *evaluator.Expression, decls []*evaluator.FunctionDecl) error {
	if err := matchLets(expr.Lets, freshContext); err != nil {
		return err
	}
	inFunction := failContext("function declaration")
	for _, decl := range decls {
		if err := matchLets(decl.Lets, inFunction); err != nil {
			return err
		}
		if err := matchNode(decl.Body, inFunction); err != nil {
			return err
		}
	}
	return matchNode(expr.Body, freshContext)
}

func matchLets(lets []*evaluator.Let, ctx matchContext) error {
	for _, let := range lets {
		if err := matchNode(let.Value, ctx); err != nil {
			return err
		}
	}
	return nil
}

func matchAll(nodes []evaluator.Node, ctx matchContext) error {
	for _, n := range nodes {
		if err := matchNode(n, ctx); err != nil {
			return err
		}
	}
	return nil
}

func matchNode(n evaluator.Node, ctx matchContext) error {
	switch n := n.(type) {
	case *evaluator.ObjectCons:
		return matchObject(n, ctx)

	case *evaluator.ArrayCons:
		return matchAll(n.Elements, failContext("array"))

	case *evaluator.ArrayFor:
		// the loop body matches against the element being visited
		if err := matchNode(n.Seq, ctx); err != nil {
			return err
		}
		if err := matchLets(n.Lets, freshContext); err != nil {
			return err
		}
		return matchAll([]evaluator.Node{n.Body, n.Cond}, freshContext)

	case *evaluator.ObjectFor:
		if err := matchNode(n.Seq, ctx); err != nil {
			return err
		}
		if err := matchLets(n.Lets, freshContext); err != nil {
			return err
		}
		return matchAll([]evaluator.Node{n.Key, n.Value, n.Cond}, freshContext)

	case *evaluator.Pipe:
		if err := matchNode(n.Left, ctx); err != nil {
			return err
		}
		return matchNode(n.Right, freshContext)

	case *evaluator.If:
		if err := matchNode(n.Test, ctx); err != nil {
			return err
		}
		if err := matchLets(n.Lets, ctx); err != nil {
			return err
		}
		if err := matchNode(n.Then, ctx); err != nil {
			return err
		}
		if err := matchLets(n.ElseLets, ctx); err != nil {
			return err
		}
		return matchNode(n.Else, ctx)

	case *evaluator.Dot:
		return matchNode(n.Parent, ctx)
	case *evaluator.Slice:
		return matchAll([]evaluator.Node{n.Parent, n.Left, n.Right}, ctx)
	case *evaluator.And:
		return matchAll([]evaluator.Node{n.Left, n.Right}, ctx)
	case *evaluator.Or:
		return matchAll([]evaluator.Node{n.Left, n.Right}, ctx)
	case *evaluator.Binary:
		return matchAll([]evaluator.Node{n.Left, n.Right}, ctx)
	case *evaluator.Call:
		return matchAll(n.Args, ctx)
	case *evaluator.MacroCall:
		return matchAll(n.Args, ctx)
	}
	return nil
}

func matchObject(n *evaluator.ObjectCons, ctx matchContext) error {
	if m := n.Matcher; m != nil {
		if ctx.fail != "" {
			return types.Errorf(types.ErrMatcherContext, m.Loc, "Object matcher not allowed inside %s", ctx.fail)
		}
		m.Context = ctx.dot
		// the matcher value sees each copied field as its input
		if err := matchNode(m.Value, freshContext); err != nil {
			return err
		}
	}

	if err := matchLets(n.Lets, ctx); err != nil {
		return err
	}
	for _, p := range n.Pairs {
		if key, ok := p.StaticKey(); ok {
			if err := matchNode(p.Value, ctx.child(key, p.Loc)); err != nil {
				return err
			}
			continue
		}
		if err := matchNode(p.Key, ctx); err != nil {
			return err
		}
		if err := matchNode(p.Value, failContext("dynamic object")); err != nil {
			return err
		}
	}
	return nil
}
