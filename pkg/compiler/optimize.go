package compiler

import (
	"log/slog"

	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// optimizer rewrites a prepared expression graph bottom-up:
//
//   - operators, array constructors and objects without lets or matcher
//     whose children are all literals become literals;
//   - variables bound to a literal let become that literal;
//   - contains() over a large literal array uses a hash set;
//   - literal regular expressions are compiled up front.
//
// Folding is skipped when evaluating the literal children fails, so the
// error still surfaces at run time where it would have without the rewrite.
type optimizer struct {
	logger *slog.Logger
	regex  *evaluator.RegexCache
}

func (o *optimizer) unit(expr *evaluator.Expression, decls []*evaluator.FunctionDecl) error {
	if err := o.lets(expr.Lets); err != nil {
		return err
	}
	for _, decl := range decls {
		if err := o.lets(decl.Lets); err != nil {
			return err
		}
		body, err := o.node(decl.Body)
		if err != nil {
			return err
		}
		decl.Body = body
	}
	body, err := o.node(expr.Body)
	if err != nil {
		return err
	}
	expr.Body = body
	return nil
}

func (o *optimizer) lets(lets []*evaluator.Let) error {
	for _, let := range lets {
		v, err := o.node(let.Value)
		if err != nil {
			return err
		}
		let.Value = v
	}
	return nil
}

func (o *optimizer) all(nodes []evaluator.Node) (allLiteral bool, err error) {
	allLiteral = true
	for i, n := range nodes {
		if nodes[i], err = o.node(n); err != nil {
			return false, err
		}
		if !isLiteral(nodes[i]) {
			allLiteral = false
		}
	}
	return allLiteral, nil
}

func isLiteral(n evaluator.Node) bool {
	_, ok := n.(*evaluator.Literal)
	return ok
}

// fold evaluates a node whose children are literals.
func (o *optimizer) fold(n evaluator.Node) evaluator.Node {
	v, err := evaluator.Eval(n, evaluator.NewScope(0), value.Null)
	if err != nil {
		o.logger.Debug("literal folding skipped", slog.String("expr", n.String()), slog.Any("error", err))
		return n
	}
	o.logger.Debug("literal folded", slog.String("expr", n.String()))
	return evaluator.NewLiteral(v, n.Location())
}

func (o *optimizer) pair(left, right *evaluator.Node) (bool, error) {
	nodes := []evaluator.Node{*left, *right}
	ok, err := o.all(nodes)
	*left, *right = nodes[0], nodes[1]
	return ok, err
}

func (o *optimizer) node(n evaluator.Node) (evaluator.Node, error) {
	switch n := n.(type) {
	case *evaluator.Variable:
		if lit, ok := n.Info.Declaration().(*evaluator.Literal); ok {
			return evaluator.NewLiteral(lit.Value, n.Location()), nil
		}
		return n, nil

	case *evaluator.Binary:
		ok, err := o.pair(&n.Left, &n.Right)
		if err != nil || !ok {
			return n, err
		}
		return o.fold(n), nil

	case *evaluator.And:
		ok, err := o.pair(&n.Left, &n.Right)
		if err != nil || !ok {
			return n, err
		}
		return o.fold(n), nil

	case *evaluator.Or:
		ok, err := o.pair(&n.Left, &n.Right)
		if err != nil || !ok {
			return n, err
		}
		return o.fold(n), nil

	case *evaluator.Pipe:
		ok, err := o.pair(&n.Left, &n.Right)
		if err != nil || !ok {
			return n, err
		}
		return o.fold(n), nil

	case *evaluator.ArrayCons:
		ok, err := o.all(n.Elements)
		if err != nil || !ok {
			return n, err
		}
		return o.fold(n), nil

	case *evaluator.ObjectCons:
		return o.object(n)

	case *evaluator.Call:
		return o.call(n)

	case *evaluator.MacroCall:
		_, err := o.all(n.Args)
		return n, err

	case *evaluator.Dot:
		parent, err := o.node(n.Parent)
		n.Parent = parent
		return n, err

	case *evaluator.Slice:
		nodes := []evaluator.Node{n.Parent, n.Left, n.Right}
		_, err := o.all(nodes)
		n.Parent, n.Left, n.Right = nodes[0], nodes[1], nodes[2]
		return n, err

	case *evaluator.If:
		if err := o.lets(n.Lets); err != nil {
			return n, err
		}
		if err := o.lets(n.ElseLets); err != nil {
			return n, err
		}
		nodes := []evaluator.Node{n.Test, n.Then, n.Else}
		_, err := o.all(nodes)
		n.Test, n.Then, n.Else = nodes[0], nodes[1], nodes[2]
		return n, err

	case *evaluator.ArrayFor:
		if err := o.lets(n.Lets); err != nil {
			return n, err
		}
		nodes := []evaluator.Node{n.Seq, n.Body, n.Cond}
		_, err := o.all(nodes)
		n.Seq, n.Body, n.Cond = nodes[0], nodes[1], nodes[2]
		return n, err

	case *evaluator.ObjectFor:
		if err := o.lets(n.Lets); err != nil {
			return n, err
		}
		nodes := []evaluator.Node{n.Seq, n.Key, n.Value, n.Cond}
		_, err := o.all(nodes)
		n.Seq, n.Key, n.Value, n.Cond = nodes[0], nodes[1], nodes[2], nodes[3]
		return n, err
	}
	return n, nil
}

func (o *optimizer) object(n *evaluator.ObjectCons) (evaluator.Node, error) {
	if err := o.lets(n.Lets); err != nil {
		return n, err
	}
	if n.Matcher != nil {
		v, err := o.node(n.Matcher.Value)
		if err != nil {
			return n, err
		}
		n.Matcher.Value = v
	}

	static := true
	for _, p := range n.Pairs {
		ok, err := o.pair(&p.Key, &p.Value)
		if err != nil {
			return n, err
		}
		if _, isStatic := p.StaticKey(); !ok || !isStatic {
			static = false
		}
	}
	if static && n.Matcher == nil && len(n.Lets) == 0 {
		return o.fold(n), nil
	}
	return n, nil
}

func (o *optimizer) call(n *evaluator.Call) (evaluator.Node, error) {
	if _, err := o.all(n.Args); err != nil {
		return n, err
	}
	if n.Function == nil {
		return n, nil
	}

	if evaluator.IsBuiltinContains(n.Function) && len(n.Args) == 2 {
		if lit, ok := n.Args[1].(*evaluator.Literal); ok {
			if arr, ok := lit.Value.(value.Array); ok && len(arr) > evaluator.StaticContainsThreshold {
				o.logger.Debug("contains rebound to hash set", slog.Int("elements", len(arr)))
				if err := n.Resolve(evaluator.NewStaticContains(arr)); err != nil {
					return n, err
				}
			}
		}
	}

	if idx, ok := evaluator.RegexArgument(n.Function); ok && idx < len(n.Args) {
		if lit, ok := n.Args[idx].(*evaluator.Literal); ok {
			if pattern, ok := lit.Value.(value.Text); ok {
				if _, err := o.regex.Compile(string(pattern)); err != nil {
					return n, types.AsError(err, types.ErrRegexSyntax, lit.Location())
				}
				o.logger.Debug("regex precompiled", slog.String("pattern", string(pattern)))
			}
		}
	}
	return n, nil
}
