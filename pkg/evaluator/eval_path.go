package evaluator

import (
	"math"

	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func evalDot(n *Dot, s *Scope, input value.Value) (value.Value, error) {
	v := input
	if n.Parent != nil {
		var err error
		if v, err = Eval(n.Parent, s, input); err != nil {
			return nil, err
		}
	}
	if n.Key == "" {
		return value.OrNull(v), nil
	}
	if obj, ok := v.(*value.Object); ok {
		return obj.Field(n.Key), nil
	}
	return value.Null, nil
}

// evalSlice implements seq[i] and seq[from:to] on arrays and strings.
// Negative indexes count from the end. Anything else yields null.
func evalSlice(n *Slice, s *Scope, input value.Value) (value.Value, error) {
	seq, err := Eval(n.Parent, s, input)
	if err != nil {
		return nil, err
	}

	var runes []rune
	var size int
	switch x := seq.(type) {
	case value.Array:
		size = len(x)
	case value.Text:
		runes = []rune(string(x))
		size = len(runes)
	default:
		return value.Null, nil
	}

	left, err := sliceIndex(n, n.Left, s, input, size, 0)
	if err != nil {
		return nil, err
	}

	if !n.Colon {
		if arr, ok := seq.(value.Array); ok {
			if left < 0 || left >= size {
				return value.Null, nil
			}
			return arr[left], nil
		}
		if left < 0 || left >= size {
			return nil, types.Errorf(types.ErrIndexOutOfRange, n.loc, "String index out of range: %d", left)
		}
		return value.Text(runes[left]), nil
	}

	right, err := sliceIndex(n, n.Right, s, input, size, size)
	if err != nil {
		return nil, err
	}
	left = max(left, 0)
	right = min(right, size)

	if arr, ok := seq.(value.Array); ok {
		if left >= right {
			return value.Array{}, nil
		}
		out := make(value.Array, right-left)
		copy(out, arr[left:right])
		return out, nil
	}
	if left >= right {
		return value.Text(""), nil
	}
	return value.Text(runes[left:right]), nil
}

func sliceIndex(n *Slice, expr Node, s *Scope, input value.Value, size, ifNil int) (int, error) {
	if expr == nil {
		return ifNil, nil
	}
	v, err := Eval(expr, s, input)
	if err != nil {
		return 0, err
	}
	if !value.IsNumber(v) {
		return 0, types.Errorf(types.ErrBadIndex, n.loc, "Can't index array/string with %s", value.String(v))
	}

	var ix int
	if i, ok := value.ToInt64(v); ok {
		ix = clampInt(i)
	} else {
		f, _ := value.ToFloat(v)
		f = math.Max(math.Min(math.Trunc(f), math.MaxInt32), math.MinInt32)
		ix = int(f)
	}
	if ix < 0 {
		ix += size
	}
	return ix, nil
}

func clampInt(i int64) int {
	if i > math.MaxInt32 {
		return math.MaxInt32
	}
	if i < math.MinInt32 {
		return math.MinInt32
	}
	return int(i)
}
