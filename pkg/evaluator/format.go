package evaluator

import (
	"strings"

	"github.com/sandrolain/gojslt/pkg/value"
)

// Operator precedence, loosest first.
const (
	precPipe = iota
	precOr
	precAnd
	precCompare
	precAdd
	precMul
	precBase
)

func precedence(n Node) int {
	switch n := n.(type) {
	case *Pipe:
		return precPipe
	case *Or:
		return precOr
	case *And:
		return precAnd
	case *Binary:
		return n.Op.precedence()
	}
	return precBase
}

func (op Operator) precedence() int {
	switch op {
	case OpPlus, OpMinus:
		return precAdd
	case OpMultiply, OpDivide, OpModulo:
		return precMul
	}
	return precCompare
}

// operand renders a child of an operator, adding parentheses when the
// child binds looser than the parent. With tight set, an equally binding
// child is parenthesized too.
func operand(sb *strings.Builder, child Node, prec int, tight bool) {
	p := precedence(child)
	if p < prec || (tight && p == prec) {
		sb.WriteByte('(')
		sb.WriteString(child.String())
		sb.WriteByte(')')
		return
	}
	sb.WriteString(child.String())
}

func infix(left Node, op string, right Node, prec int, rightAssoc bool) string {
	var sb strings.Builder
	operand(&sb, left, prec, rightAssoc || prec == precCompare)
	sb.WriteByte(' ')
	sb.WriteString(op)
	sb.WriteByte(' ')
	operand(&sb, right, prec, !rightAssoc)
	return sb.String()
}

func (n *Literal) String() string { return value.String(n.Value) }

func (n *Dot) String() string {
	var parent string
	if d, ok := n.Parent.(*Dot); !ok || d.Key != "" || d.Parent != nil {
		if n.Parent != nil {
			parent = n.Parent.String()
		}
	}
	if n.Key == "" {
		return parent + "."
	}
	return parent + "." + keyString(n.Key)
}

func keyString(key string) string {
	for i, r := range key {
		name := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && (r == '-' || (r >= '0' && r <= '9')))
		if !name {
			return value.String(value.Text(key))
		}
	}
	if key == "" {
		return `""`
	}
	return key
}

func (n *Slice) String() string {
	var sb strings.Builder
	sb.WriteString(n.Parent.String())
	sb.WriteByte('[')
	if n.Left != nil {
		sb.WriteString(n.Left.String())
	}
	if n.Colon {
		sb.WriteByte(':')
		if n.Right != nil {
			sb.WriteString(n.Right.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func (n *Variable) String() string { return "$" + n.Name }

func (n *ArrayCons) String() string {
	return "[" + joinNodes(n.Elements) + "]"
}

func (n *ObjectCons) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	writeLets(&sb, n.Lets)
	for i, p := range n.Pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Key.String())
		sb.WriteString(" : ")
		sb.WriteString(p.Value.String())
	}
	if m := n.Matcher; m != nil {
		if len(n.Pairs) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('*')
		if len(m.Minus) > 0 {
			sb.WriteString(" - ")
			for i, k := range m.Minus {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(keyString(k))
			}
		}
		sb.WriteString(" : ")
		sb.WriteString(m.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (n *ArrayFor) String() string {
	var sb strings.Builder
	sb.WriteString("[for (")
	sb.WriteString(n.Seq.String())
	sb.WriteString(") ")
	writeLets(&sb, n.Lets)
	sb.WriteString(n.Body.String())
	writeCond(&sb, n.Cond)
	sb.WriteByte(']')
	return sb.String()
}

func (n *ObjectFor) String() string {
	var sb strings.Builder
	sb.WriteString("{for (")
	sb.WriteString(n.Seq.String())
	sb.WriteString(") ")
	writeLets(&sb, n.Lets)
	sb.WriteString(n.Key.String())
	sb.WriteString(" : ")
	sb.WriteString(n.Value.String())
	writeCond(&sb, n.Cond)
	sb.WriteByte('}')
	return sb.String()
}

func (n *If) String() string {
	var sb strings.Builder
	sb.WriteString("if (")
	sb.WriteString(n.Test.String())
	sb.WriteString(") ")
	writeLets(&sb, n.Lets)
	sb.WriteString(n.Then.String())
	if n.Else != nil {
		sb.WriteString(" else ")
		writeLets(&sb, n.ElseLets)
		sb.WriteString(n.Else.String())
	}
	return sb.String()
}

func (n *Pipe) String() string { return infix(n.Left, "|", n.Right, precPipe, false) }
func (n *And) String() string  { return infix(n.Left, "and", n.Right, precAnd, true) }
func (n *Or) String() string   { return infix(n.Left, "or", n.Right, precOr, true) }

func (n *Binary) String() string {
	return infix(n.Left, n.Op.String(), n.Right, n.Op.precedence(), false)
}

func (n *Call) String() string {
	return n.Name + "(" + joinNodes(n.Args) + ")"
}

func (n *MacroCall) String() string {
	return n.Name + "(" + joinNodes(n.Args) + ")"
}

func (l *Let) String() string {
	return "let " + l.Name + " = " + l.Value.String()
}

func (f *FunctionDecl) String() string {
	var sb strings.Builder
	sb.WriteString("def ")
	sb.WriteString(f.FuncName)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(f.Params, ", "))
	sb.WriteString(") ")
	writeLets(&sb, f.Lets)
	sb.WriteString(f.Body.String())
	return sb.String()
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

func writeLets(sb *strings.Builder, lets []*Let) {
	for _, l := range lets {
		sb.WriteString(l.String())
		sb.WriteByte(' ')
	}
}

func writeCond(sb *strings.Builder, cond Node) {
	if cond == nil {
		return
	}
	sb.WriteString(" if (")
	sb.WriteString(cond.String())
	sb.WriteByte(')')
}
