package value

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/gojslt/pkg/types"
)

// arithmetic operators
type arithOp uint8

const (
	opAdd arithOp = iota
	opSub
	opMul
)

func (op arithOp) verb() string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "subtract"
	default:
		return "multiply"
	}
}

// Plus implements the + operator.
func Plus(a, b Value) (Value, error) {
	a, b = OrNull(a), OrNull(b)

	_, at := a.(Text)
	_, bt := b.(Text)
	if at || bt {
		return Text(render(a) + render(b)), nil
	}

	switch l := a.(type) {
	case Array:
		switch r := b.(type) {
		case Array:
			out := make(Array, 0, len(l)+len(r))
			out = append(out, l...)
			return append(out, r...), nil
		case null:
			return l, nil
		}
	case *Object:
		switch r := b.(type) {
		case *Object:
			return union(l, r), nil
		case null:
			return l, nil
		}
	case null:
		switch b.(type) {
		case Array, *Object:
			return b, nil
		}
	}
	return arith(opAdd, a, b)
}

// Minus implements the - operator.
func Minus(a, b Value) (Value, error) {
	return arith(opSub, OrNull(a), OrNull(b))
}

// Multiply implements the * operator.
func Multiply(a, b Value) (Value, error) {
	a, b = OrNull(a), OrNull(b)
	ls, lok := a.(Text)
	rs, rok := b.(Text)
	switch {
	case lok && rok:
		return nil, types.NewError(types.ErrTypeMismatch, "Can't multiply two strings")
	case lok && IsIntegral(b):
		return repeat(ls, b)
	case rok && IsIntegral(a):
		return repeat(rs, a)
	}
	return arith(opMul, a, b)
}

func repeat(s Text, count Value) (Value, error) {
	n, ok := ToInt64(count)
	if !ok || n > math.MaxInt32 {
		return nil, types.Errorf(types.ErrTypeMismatch, nil, "Can't repeat string %d times", toBig(count))
	}
	if n <= 0 {
		return Text(""), nil
	}
	return Text(strings.Repeat(string(s), int(n))), nil
}

// union returns the keys of l followed by the keys of r not present in l.
func union(l, r *Object) *Object {
	out := NewObject(l.Len() + r.Len())
	l.Range(func(k string, v Value) bool {
		out.Set(k, v)
		return true
	})
	r.Range(func(k string, v Value) bool {
		if !l.Has(k) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// render is the text form used by string concatenation.
func render(v Value) string {
	if t, ok := v.(Text); ok {
		return string(t)
	}
	return String(v)
}

// numeric rank within the tower
func rank(v Value) int {
	switch v.(type) {
	case Int:
		return 1
	case Long:
		return 2
	case BigInt:
		return 3
	case Double:
		return 4
	case BigDecimal:
		return 5
	}
	return 0
}

// coerce turns a boolean right operand of a number into 0 or 1. A boolean
// on the left is left alone and fails the number check.
func coerce(a, b Value) (Value, Value) {
	if x, ok := b.(Bool); ok && IsNumber(a) {
		if x {
			return a, Int(1)
		}
		return a, Int(0)
	}
	return a, b
}

// needsDecimal reports whether a pair must be computed as BigDecimal.
func needsDecimal(a, b Value) bool {
	ra, rb := rank(a), rank(b)
	if ra == 5 || rb == 5 {
		return true
	}
	return (ra == 3 && rb == 4) || (ra == 4 && rb == 3)
}

func arith(op arithOp, a, b Value) (Value, error) {
	if IsNull(a) || IsNull(b) {
		return Null, nil
	}
	a, b = coerce(a, b)
	if !IsNumber(a) || !IsNumber(b) {
		return nil, types.Errorf(types.ErrTypeMismatch, nil, "Can't %s %s and %s", op.verb(), String(a), String(b))
	}

	if needsDecimal(a, b) {
		if !isFinite(a) || !isFinite(b) {
			return arithFloat(op, a, b), nil
		}
		x, y := toDecimal(a), toDecimal(b)
		switch op {
		case opAdd:
			return BigDecimal{v: x.Add(y)}, nil
		case opSub:
			return BigDecimal{v: x.Sub(y)}, nil
		default:
			return BigDecimal{v: x.Mul(y)}, nil
		}
	}
	if IsDecimal(a) || IsDecimal(b) {
		return arithFloat(op, a, b), nil
	}

	switch max(rank(a), rank(b)) {
	case 1:
		// Int op Int stays Int and wraps on overflow.
		x, y := a.(Int), b.(Int)
		switch op {
		case opAdd:
			return x + y, nil
		case opSub:
			return x - y, nil
		default:
			return x * y, nil
		}
	case 2:
		x, _ := ToInt64(a)
		y, _ := ToInt64(b)
		switch op {
		case opAdd:
			return Long(x + y), nil
		case opSub:
			return Long(x - y), nil
		default:
			return Long(x * y), nil
		}
	default:
		x, y := toBig(a), toBig(b)
		switch op {
		case opAdd:
			return BigInt{v: x.Add(x, y)}, nil
		case opSub:
			return BigInt{v: x.Sub(x, y)}, nil
		default:
			return BigInt{v: x.Mul(x, y)}, nil
		}
	}
}

func arithFloat(op arithOp, a, b Value) Value {
	x, _ := ToFloat(a)
	y, _ := ToFloat(b)
	switch op {
	case opAdd:
		return Double(x + y)
	case opSub:
		return Double(x - y)
	default:
		return Double(x * y)
	}
}

// Divide implements the / operator. Integral operands divide exactly when
// the remainder is zero, otherwise the result is a decimal.
func Divide(a, b Value) (Value, error) {
	a, b = OrNull(a), OrNull(b)
	if IsNull(a) || IsNull(b) {
		return Null, nil
	}
	a, b = coerce(a, b)
	if !IsNumber(a) || !IsNumber(b) {
		return nil, types.Errorf(types.ErrTypeMismatch, nil, "Can't divide %s and %s", String(a), String(b))
	}
	if isZero(b) {
		return nil, types.NewError(types.ErrDivisionByZero, "Can't divide by zero")
	}

	if IsIntegral(a) && IsIntegral(b) {
		if rank(a) < 3 && rank(b) < 3 {
			x, _ := ToInt64(a)
			y, _ := ToInt64(b)
			if x%y != 0 {
				return Double(float64(x) / float64(y)), nil
			}
			if rank(a) == 1 && rank(b) == 1 {
				return Int(int32(x / y)), nil
			}
			return Long(x / y), nil
		}
		x, y := toBig(a), toBig(b)
		q, r := new(big.Int).QuoRem(x, y, new(big.Int))
		if r.Sign() == 0 {
			return BigInt{v: q}, nil
		}
		return BigDecimal{v: decimal.NewFromBigInt(x, 0).Div(decimal.NewFromBigInt(y, 0))}, nil
	}

	if needsDecimal(a, b) && isFinite(a) && isFinite(b) {
		return BigDecimal{v: toDecimal(a).Div(toDecimal(b))}, nil
	}
	x, _ := ToFloat(a)
	y, _ := ToFloat(b)
	return Double(x / y), nil
}

// Modulo returns the floored remainder of two integral values. The sign of
// a non-zero result follows the divisor.
func Modulo(a, b Value) (Value, error) {
	a, b = OrNull(a), OrNull(b)
	if IsNull(a) || IsNull(b) {
		return Null, nil
	}
	if !IsIntegral(a) || !IsIntegral(b) {
		return nil, types.NewError(types.ErrTypeMismatch, "operands must be integral types")
	}
	if isZero(b) {
		return nil, types.NewError(types.ErrDivisionByZero, "cannot divide by zero")
	}
	if rank(a) < 3 && rank(b) < 3 {
		x, _ := ToInt64(a)
		y, _ := ToInt64(b)
		if y == -1 {
			return zeroOf(a, b), nil
		}
		r := x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		if rank(a) == 1 && rank(b) == 1 {
			return Int(r), nil
		}
		return Long(r), nil
	}
	x, y := toBig(a), toBig(b)
	r := new(big.Int).Rem(x, y)
	if r.Sign() != 0 && (r.Sign() < 0) != (y.Sign() < 0) {
		r.Add(r, y)
	}
	return BigInt{v: r}, nil
}

func zeroOf(a, b Value) Value {
	if rank(a) == 1 && rank(b) == 1 {
		return Int(0)
	}
	return Long(0)
}

func isZero(v Value) bool {
	switch n := v.(type) {
	case Int:
		return n == 0
	case Long:
		return n == 0
	case BigInt:
		return n.Big().Sign() == 0
	case Double:
		return n == 0
	case BigDecimal:
		return n.v.IsZero()
	}
	return false
}

// Negate returns -v for a number.
func Negate(v Value) (Value, error) {
	switch n := v.(type) {
	case Int:
		if n == math.MinInt32 {
			return Long(-int64(n)), nil
		}
		return -n, nil
	case Long:
		if n == math.MinInt64 {
			return BigInt{v: new(big.Int).Neg(big.NewInt(int64(n)))}, nil
		}
		return -n, nil
	case BigInt:
		return BigInt{v: new(big.Int).Neg(n.Big())}, nil
	case Double:
		return -n, nil
	case BigDecimal:
		return BigDecimal{v: n.v.Neg()}, nil
	}
	return nil, types.Errorf(types.ErrTypeMismatch, nil, "Can't negate %s", String(v))
}
