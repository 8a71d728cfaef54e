// Package extarray provides array functions beyond the builtins.
//
// Plain functions take evaluated arguments. The *-by callables are macros:
// their second argument is an expression evaluated with each element as
// input, so they are only reachable through the module:
//
//	import "ext:array" as a
//	a:sort-by(.people, .age)
package extarray

import (
	"math"
	"sort"

	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/ext/extutil"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

// URI is the name the array module is imported by.
const URI = "ext:array"

// maxRange bounds the length of arrays produced by range().
const maxRange = 100000

// All returns the plain functions of the package.
func All() []functions.Function {
	return []functions.Function{
		First(),
		Last(),
		Take(),
		Skip(),
		Chunk(),
		Window(),
		Unique(),
		Union(),
		Intersection(),
		Difference(),
		SymmetricDifference(),
		Range(),
		ZipLongest(),
	}
}

// Macros returns the per-element macros of the package.
func Macros() []*evaluator.MacroDef {
	return []*evaluator.MacroDef{
		CountBy(),
		SumBy(),
		MinBy(),
		MaxBy(),
		SortBy(),
	}
}

// Module returns functions and macros as an importable module.
func Module() *functions.MapModule {
	var cs []functions.Callable
	for _, f := range All() {
		cs = append(cs, f)
	}
	for _, m := range Macros() {
		cs = append(cs, m)
	}
	return functions.NewModule(cs...)
}

// arrayFunc defines a function whose first argument is an array. A null
// array yields null.
func arrayFunc(name string, minArgs, maxArgs int, fn func(arr value.Array, args []value.Value) (value.Value, error)) *functions.FunctionDef {
	return functions.Define(name, minArgs, maxArgs, func(_ value.Value, args []value.Value) (value.Value, error) {
		arr, ok, err := extutil.Array(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		return fn(arr, args[1:])
	})
}

// First returns first(array).
func First() *functions.FunctionDef {
	return arrayFunc("first", 1, 1, func(arr value.Array, _ []value.Value) (value.Value, error) {
		if len(arr) == 0 {
			return value.Null, nil
		}
		return arr[0], nil
	})
}

// Last returns last(array).
func Last() *functions.FunctionDef {
	return arrayFunc("last", 1, 1, func(arr value.Array, _ []value.Value) (value.Value, error) {
		if len(arr) == 0 {
			return value.Null, nil
		}
		return arr[len(arr)-1], nil
	})
}

func clamp(n, length int) int {
	return max(0, min(n, length))
}

// Take returns take(array, n): the first n elements.
func Take() *functions.FunctionDef {
	const name = "take"
	return arrayFunc(name, 2, 2, func(arr value.Array, args []value.Value) (value.Value, error) {
		n, _, err := extutil.Int(name, args[0])
		if err != nil {
			return nil, err
		}
		return arr[:clamp(n, len(arr))], nil
	})
}

// Skip returns skip(array, n): the elements after the first n.
func Skip() *functions.FunctionDef {
	const name = "skip"
	return arrayFunc(name, 2, 2, func(arr value.Array, args []value.Value) (value.Value, error) {
		n, _, err := extutil.Int(name, args[0])
		if err != nil {
			return nil, err
		}
		return arr[clamp(n, len(arr)):], nil
	})
}

// Chunk returns chunk(array, size): consecutive slices of at most size
// elements.
func Chunk() *functions.FunctionDef {
	const name = "chunk"
	return arrayFunc(name, 2, 2, func(arr value.Array, args []value.Value) (value.Value, error) {
		size, _, err := extutil.Int(name, args[0])
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, extutil.ArgError(name, "size must be positive, got %d", size)
		}
		out := make(value.Array, 0, (len(arr)+size-1)/size)
		for i := 0; i < len(arr); i += size {
			out = append(out, arr[i:min(i+size, len(arr))])
		}
		return out, nil
	})
}

// Window returns window(array, size [, step]): sliding windows of exactly
// size elements, starting every step elements.
func Window() *functions.FunctionDef {
	const name = "window"
	return arrayFunc(name, 2, 3, func(arr value.Array, args []value.Value) (value.Value, error) {
		size, _, err := extutil.Int(name, args[0])
		if err != nil {
			return nil, err
		}
		step := 1
		if len(args) > 1 {
			if step, _, err = extutil.Int(name, args[1]); err != nil {
				return nil, err
			}
		}
		if size <= 0 || step <= 0 {
			return nil, extutil.ArgError(name, "size and step must be positive")
		}
		out := value.Array{}
		for i := 0; i+size <= len(arr); i += step {
			out = append(out, arr[i:i+size])
		}
		return out, nil
	})
}

// set is an insertion-ordered collection of distinct values. Numbers that
// compare equal are the same element.
type set struct {
	items value.Array
}

func (s *set) has(v value.Value) bool {
	for _, it := range s.items {
		if value.Equal(it, v) {
			return true
		}
	}
	return false
}

func (s *set) add(v value.Value) {
	if !s.has(v) {
		s.items = append(s.items, v)
	}
}

func setOf(arr value.Array) *set {
	s := &set{}
	for _, v := range arr {
		s.add(v)
	}
	return s
}

// Unique returns unique(array): the distinct elements in order of first
// appearance.
func Unique() *functions.FunctionDef {
	return arrayFunc("unique", 1, 1, func(arr value.Array, _ []value.Value) (value.Value, error) {
		return append(value.Array{}, setOf(arr).items...), nil
	})
}

// setFunc defines a function over two arrays. A null operand counts as the
// empty array.
func setFunc(name string, fn func(a, b value.Array) value.Array) *functions.FunctionDef {
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		a, _, err := extutil.Array(name, args[0])
		if err != nil {
			return nil, err
		}
		b, _, err := extutil.Array(name, args[1])
		if err != nil {
			return nil, err
		}
		return append(value.Array{}, fn(a, b)...), nil
	})
}

// Union returns union(a, b): the distinct elements of both arrays.
func Union() *functions.FunctionDef {
	return setFunc("union", func(a, b value.Array) value.Array {
		s := setOf(a)
		for _, v := range b {
			s.add(v)
		}
		return s.items
	})
}

// Intersection returns intersection(a, b).
func Intersection() *functions.FunctionDef {
	return setFunc("intersection", func(a, b value.Array) value.Array {
		other := setOf(b)
		out := &set{}
		for _, v := range a {
			if other.has(v) {
				out.add(v)
			}
		}
		return out.items
	})
}

// Difference returns difference(a, b): elements of a missing from b.
func Difference() *functions.FunctionDef {
	return setFunc("difference", func(a, b value.Array) value.Array {
		other := setOf(b)
		out := &set{}
		for _, v := range a {
			if !other.has(v) {
				out.add(v)
			}
		}
		return out.items
	})
}

// SymmetricDifference returns symmetric-difference(a, b): elements in exactly
// one of the arrays.
func SymmetricDifference() *functions.FunctionDef {
	return setFunc("symmetric-difference", func(a, b value.Array) value.Array {
		sa, sb := setOf(a), setOf(b)
		out := &set{}
		for _, v := range sa.items {
			if !sb.has(v) {
				out.add(v)
			}
		}
		for _, v := range sb.items {
			if !sa.has(v) {
				out.add(v)
			}
		}
		return out.items
	})
}

// Range returns range(start, end [, step]): numbers from start up to, and
// excluding, end.
func Range() *functions.FunctionDef {
	const name = "range"
	return functions.Define(name, 2, 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		start, ok1, err := extutil.Float(name, args[0])
		if err != nil {
			return nil, err
		}
		end, ok2, err := extutil.Float(name, args[1])
		if err != nil {
			return nil, err
		}
		if !ok1 || !ok2 {
			return value.Null, nil
		}
		step := 1.0
		if len(args) > 2 {
			var ok bool
			if step, ok, err = extutil.Float(name, args[2]); err != nil {
				return nil, err
			}
			if !ok {
				step = 1
			}
		}
		if step == 0 || math.IsNaN(step) {
			return nil, extutil.ArgError(name, "step must not be zero")
		}
		out := value.Array{}
		for i := 0; ; i++ {
			v := start + float64(i)*step
			if (step > 0 && v >= end) || (step < 0 && v <= end) {
				break
			}
			if i >= maxRange {
				return nil, extutil.ArgError(name, "would produce more than %d elements", maxRange)
			}
			out = append(out, extutil.Number(math.Round(v*1e10)/1e10))
		}
		return out, nil
	})
}

// ZipLongest returns zip-longest(a, b [, fill]): pairs of elements, the
// shorter array padded with fill (null by default).
func ZipLongest() *functions.FunctionDef {
	const name = "zip-longest"
	return zipFunc(name, func(a, b value.Array, fill value.Value) value.Value {
		n := max(len(a), len(b))
		out := make(value.Array, n)
		for i := range n {
			l, r := fill, fill
			if i < len(a) {
				l = a[i]
			}
			if i < len(b) {
				r = b[i]
			}
			out[i] = value.Array{l, r}
		}
		return out
	})
}

func zipFunc(name string, fn func(a, b value.Array, fill value.Value) value.Value) *functions.FunctionDef {
	return functions.Define(name, 2, 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		a, _, err := extutil.Array(name, args[0])
		if err != nil {
			return nil, err
		}
		b, _, err := extutil.Array(name, args[1])
		if err != nil {
			return nil, err
		}
		fill := value.Null
		if len(args) > 2 {
			fill = value.OrNull(args[2])
		}
		return fn(a, b, fill), nil
	})
}

// byMacro defines a macro that evaluates args[1] with each element of the
// array args[0] as input. A null sequence yields null.
func byMacro(name string, fn func(arr value.Array, keys []value.Value) (value.Value, error)) *evaluator.MacroDef {
	return evaluator.DefineMacro(name, 2, 2, func(s *evaluator.Scope, input value.Value, args []evaluator.Node) (value.Value, error) {
		seqv, err := evaluator.Eval(args[0], s, input)
		if err != nil {
			return nil, err
		}
		arr, ok, err := extutil.Array(name, seqv)
		if err != nil || !ok {
			return value.Null, err
		}
		keys := make([]value.Value, len(arr))
		for i, el := range arr {
			if keys[i], err = evaluator.Eval(args[1], s, el); err != nil {
				return nil, err
			}
		}
		return fn(arr, keys)
	})
}

// CountBy returns count-by(array, key): an object counting the elements per
// key. Keys must be strings.
func CountBy() *evaluator.MacroDef {
	const name = "count-by"
	return byMacro(name, func(_ value.Array, keys []value.Value) (value.Value, error) {
		out := value.NewObject(len(keys))
		for _, k := range keys {
			key, ok := k.(value.Text)
			if !ok {
				return nil, extutil.ArgError(name, "key must be a string, got %s", value.String(k))
			}
			n := int32(0)
			if cur, found := out.Get(string(key)); found {
				n = int32(cur.(value.Int))
			}
			out.Set(string(key), value.Int(n+1))
		}
		return out, nil
	})
}

// SumBy returns sum-by(array, expr): the sum of expr over the elements.
func SumBy() *evaluator.MacroDef {
	const name = "sum-by"
	return byMacro(name, func(_ value.Array, keys []value.Value) (value.Value, error) {
		var sum value.Value = value.Int(0)
		for _, k := range keys {
			if !value.IsNumber(k) {
				return nil, extutil.ArgError(name, "expected a number, got %s", value.String(k))
			}
			var err error
			if sum, err = value.Plus(sum, k); err != nil {
				return nil, err
			}
		}
		return sum, nil
	})
}

func extremeBy(name string, want int) *evaluator.MacroDef {
	return byMacro(name, func(arr value.Array, keys []value.Value) (value.Value, error) {
		best := -1
		for i, k := range keys {
			if value.IsNull(k) {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			c, err := value.Compare(k, keys[best])
			if err != nil {
				return nil, err
			}
			if c == want {
				best = i
			}
		}
		if best < 0 {
			return value.Null, nil
		}
		return arr[best], nil
	})
}

// MinBy returns min-by(array, key): the first element with the smallest
// key. Elements with a null key are skipped.
func MinBy() *evaluator.MacroDef { return extremeBy("min-by", -1) }

// MaxBy returns max-by(array, key): the first element with the largest key.
func MaxBy() *evaluator.MacroDef { return extremeBy("max-by", 1) }

// SortBy returns sort-by(array, key): the elements stably sorted by key.
// Keys must be mutually comparable.
func SortBy() *evaluator.MacroDef {
	return byMacro("sort-by", func(arr value.Array, keys []value.Value) (value.Value, error) {
		idx := make([]int, len(arr))
		for i := range idx {
			idx[i] = i
		}
		var cmpErr error
		sort.SliceStable(idx, func(i, j int) bool {
			c, err := value.Compare(keys[idx[i]], keys[idx[j]])
			if err != nil && cmpErr == nil {
				cmpErr = err
			}
			return c < 0
		})
		if cmpErr != nil {
			return nil, cmpErr
		}
		out := make(value.Array, len(arr))
		for i, k := range idx {
			out[i] = arr[k]
		}
		return out, nil
	})
}
