package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/value"
)

func evalBinary(n *Binary, s *Scope, input value.Value) (value.Value, error) {
	left, err := Eval(n.Left, s, input)
	if err != nil {
		return nil, err
	}
	right, err := Eval(n.Right, s, input)
	if err != nil {
		return nil, err
	}
	v, err := ApplyOperator(n.Op, left, right)
	if err != nil {
		return nil, locate(err, n.loc)
	}
	return v, nil
}

// ApplyOperator computes left op right.
func ApplyOperator(op Operator, left, right value.Value) (value.Value, error) {
	switch op {
	case OpEqual:
		return value.Boolean(value.Equal(left, right)), nil
	case OpNotEqual:
		return value.Boolean(!value.Equal(left, right)), nil
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		c, err := value.Compare(left, right)
		if err != nil {
			return nil, err
		}
		return value.Boolean(compareResult(op, c)), nil
	case OpPlus:
		return value.Plus(left, right)
	case OpMinus:
		return value.Minus(left, right)
	case OpMultiply:
		return value.Multiply(left, right)
	case OpDivide:
		return value.Divide(left, right)
	case OpModulo:
		return value.Modulo(left, right)
	}
	return value.Null, nil
}

func compareResult(op Operator, c int) bool {
	switch op {
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	default:
		return c >= 0
	}
}
