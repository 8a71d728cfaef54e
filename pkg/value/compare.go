package value

import (
	"cmp"
	"strings"

	"github.com/sandrolain/gojslt/pkg/types"
)

// Compare orders two values for the < <= > >= operators.
//
// Numbers compare by numeric value whatever their subtype, strings compare
// lexicographically and null is smaller than everything but itself. Any other
// combination is an error.
func Compare(a, b Value) (int, error) {
	a, b = OrNull(a), OrNull(b)
	an, bn := IsNull(a), IsNull(b)
	switch {
	case an && bn:
		return 0, nil
	case an:
		return -1, nil
	case bn:
		return 1, nil
	}

	if IsNumber(a) && IsNumber(b) {
		return compareNumbers(a, b), nil
	}
	if x, ok := a.(Text); ok {
		if y, ok := b.(Text); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	}
	return 0, types.Errorf(types.ErrCannotCompare, nil, "Can't compare %s and %s", String(a), String(b))
}

func compareNumbers(a, b Value) int {
	if IsIntegral(a) && IsIntegral(b) {
		x, xok := ToInt64(a)
		y, yok := ToInt64(b)
		if xok && yok {
			return cmp.Compare(x, y)
		}
		return toBig(a).Cmp(toBig(b))
	}
	if (rank(a) == 5 || rank(b) == 5 || rank(a) == 3 || rank(b) == 3) && isFinite(a) && isFinite(b) {
		return toDecimal(a).Cmp(toDecimal(b))
	}
	x, _ := ToFloat(a)
	y, _ := ToFloat(b)
	return cmp.Compare(x, y)
}

// Equal reports whether two values are equal. Numbers are equal when their
// numeric values are equal; arrays compare element-wise and objects compare
// key by key regardless of key order.
func Equal(a, b Value) bool {
	a, b = OrNull(a), OrNull(b)
	if IsNumber(a) && IsNumber(b) {
		return compareNumbers(a, b) == 0
	}
	switch x := a.(type) {
	case null:
		return IsNull(b)
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		eq := true
		x.Range(func(k string, v Value) bool {
			w, found := y.Get(k)
			eq = found && Equal(v, w)
			return eq
		})
		return eq
	}
	return false
}

// IsTrue reports the truthiness of v. False, null, zero, the empty string,
// the empty array and the empty object are false; everything else is true.
func IsTrue(v Value) bool {
	switch x := OrNull(v).(type) {
	case null:
		return false
	case Bool:
		return bool(x)
	case Text:
		return x != ""
	case Array:
		return len(x) > 0
	case *Object:
		return x.Len() > 0
	}
	if IsNumber(v) {
		return !isZero(v)
	}
	return true
}

// IsValue reports whether v carries a value: it is not null and not an empty
// array or object.
func IsValue(v Value) bool {
	switch x := OrNull(v).(type) {
	case null:
		return false
	case Array:
		return len(x) > 0
	case *Object:
		return x.Len() > 0
	}
	return true
}
