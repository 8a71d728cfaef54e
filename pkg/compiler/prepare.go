package compiler

import (
	"github.com/sandrolain/gojslt/pkg/evaluator"
)

// preparer assigns slots to every variable, let and parameter of a
// compilation unit.
type preparer struct {
	sm *ScopeManager
}

// unit prepares a template or module. Top-level lets are all declared
// before any of them is prepared, so they may refer to each other and
// declared functions may refer to them.
func (p *preparer) unit(expr *evaluator.Expression, decls []*evaluator.FunctionDecl) error {
	p.sm.EnterScope()
	defer p.sm.LeaveScope()

	if err := p.declare(expr.Lets); err != nil {
		return err
	}
	if err := p.lets(expr.Lets); err != nil {
		return err
	}
	for _, decl := range decls {
		if err := p.function(decl); err != nil {
			return err
		}
	}
	return p.node(expr.Body)
}

func (p *preparer) declare(lets []*evaluator.Let) error {
	for _, let := range lets {
		if _, err := p.sm.RegisterVariable(let); err != nil {
			return err
		}
	}
	return nil
}

func (p *preparer) lets(lets []*evaluator.Let) error {
	for _, let := range lets {
		if err := p.node(let.Value); err != nil {
			return err
		}
	}
	return nil
}

// function prepares a declared function in its own frame. A let inside a
// function sees the parameters and the lets before it.
func (p *preparer) function(decl *evaluator.FunctionDecl) error {
	p.sm.EnterFunction()
	defer p.sm.LeaveFunction()

	decl.ParamInfos = make([]*evaluator.VariableInfo, len(decl.Params))
	for i, name := range decl.Params {
		info, err := p.sm.RegisterParameter(name, decl.Loc)
		if err != nil {
			return err
		}
		decl.ParamInfos[i] = info
	}
	for _, let := range decl.Lets {
		if _, err := p.sm.RegisterVariable(let); err != nil {
			return err
		}
		if err := p.node(let.Value); err != nil {
			return err
		}
	}
	if err := p.node(decl.Body); err != nil {
		return err
	}
	decl.FrameSize = p.sm.StackFrameSize()
	return nil
}

// block prepares the lets of a lexical block and the nodes that see them.
func (p *preparer) block(lets []*evaluator.Let, nodes ...evaluator.Node) error {
	p.sm.EnterScope()
	defer p.sm.LeaveScope()

	if err := p.declare(lets); err != nil {
		return err
	}
	if err := p.lets(lets); err != nil {
		return err
	}
	return p.nodes(nodes...)
}

// branch prepares one side of an if. Each let is visible only to the lets
// after it and to the branch expression.
func (p *preparer) branch(lets []*evaluator.Let, n evaluator.Node) error {
	p.sm.EnterScope()
	defer p.sm.LeaveScope()

	for _, let := range lets {
		if err := p.node(let.Value); err != nil {
			return err
		}
		if _, err := p.sm.RegisterVariable(let); err != nil {
			return err
		}
	}
	return p.node(n)
}

func (p *preparer) nodes(nodes ...evaluator.Node) error {
	for _, n := range nodes {
		if err := p.node(n); err != nil {
			return err
		}
	}
	return nil
}

func (p *preparer) node(n evaluator.Node) error {
	switch n := n.(type) {
	case *evaluator.Variable:
		n.Info = p.sm.ResolveVariable(n.Name, n.Location())
		n.Info.Usages++
		return nil

	case *evaluator.ObjectCons:
		nodes := make([]evaluator.Node, 0, 2*len(n.Pairs)+1)
		for _, pair := range n.Pairs {
			nodes = append(nodes, pair.Key, pair.Value)
		}
		if n.Matcher != nil {
			nodes = append(nodes, n.Matcher.Value)
		}
		return p.block(n.Lets, nodes...)

	case *evaluator.ArrayFor:
		// the sequence is evaluated before the loop lets exist
		if err := p.node(n.Seq); err != nil {
			return err
		}
		return p.block(n.Lets, n.Body, n.Cond)

	case *evaluator.ObjectFor:
		if err := p.node(n.Seq); err != nil {
			return err
		}
		return p.block(n.Lets, n.Key, n.Value, n.Cond)

	case *evaluator.If:
		if err := p.node(n.Test); err != nil {
			return err
		}
		if err := p.branch(n.Lets, n.Then); err != nil {
			return err
		}
		return p.branch(n.ElseLets, n.Else)

	case *evaluator.Dot:
		return p.node(n.Parent)
	case *evaluator.Slice:
		return p.nodes(n.Parent, n.Left, n.Right)
	case *evaluator.ArrayCons:
		return p.nodes(n.Elements...)
	case *evaluator.Pipe:
		return p.nodes(n.Left, n.Right)
	case *evaluator.And:
		return p.nodes(n.Left, n.Right)
	case *evaluator.Or:
		return p.nodes(n.Left, n.Right)
	case *evaluator.Binary:
		return p.nodes(n.Left, n.Right)
	case *evaluator.Call:
		return p.nodes(n.Args...)
	case *evaluator.MacroCall:
		return p.nodes(n.Args...)
	}
	return nil
}
