// Package extnumeric provides mathematical and statistical functions beyond
// the builtins. A null number argument yields null. Results are Double
// unless stated otherwise.
package extnumeric

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/gojslt/pkg/ext/extutil"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

// URI is the name the numeric module is imported by.
const URI = "ext:numeric"

// All returns every function of the package.
func All() []functions.Function {
	return []functions.Function{
		Log(),
		Sign(),
		Trunc(),
		Clamp(),
		RoundTo(),
		math1("sin", math.Sin),
		math1("cos", math.Cos),
		math1("tan", math.Tan),
		math1("asin", math.Asin),
		math1("acos", math.Acos),
		math1("atan", math.Atan),
		math1("sqrt", math.Sqrt),
		Atan2(),
		Pow(),
		constant("pi", math.Pi),
		constant("e", math.E),
		Median(),
		Variance(),
		Stddev(),
		Percentile(),
		Mode(),
	}
}

// Module returns the functions of All as an importable module.
func Module() *functions.MapModule {
	return extutil.Module(All())
}

// numbers reads the leading numeric arguments; ok is false when any is null.
func numbers(name string, args []value.Value) ([]float64, bool, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, ok, err := extutil.Float(name, a)
		if err != nil || !ok {
			return nil, false, err
		}
		out[i] = f
	}
	return out, true, nil
}

// numFunc defines a function of n numeric arguments.
func numFunc(name string, n int, fn func(xs []float64) (value.Value, error)) *functions.FunctionDef {
	return functions.Define(name, n, n, func(_ value.Value, args []value.Value) (value.Value, error) {
		xs, ok, err := numbers(name, args)
		if err != nil || !ok {
			return value.Null, err
		}
		return fn(xs)
	})
}

func math1(name string, fn func(float64) float64) *functions.FunctionDef {
	return numFunc(name, 1, func(xs []float64) (value.Value, error) {
		return value.Double(fn(xs[0])), nil
	})
}

func constant(name string, c float64) *functions.FunctionDef {
	return functions.Define(name, 0, 0, func(value.Value, []value.Value) (value.Value, error) {
		return value.Double(c), nil
	})
}

// Log returns log(n [, base]), the natural logarithm without base.
func Log() *functions.FunctionDef {
	const name = "log"
	return functions.Define(name, 1, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		xs, ok, err := numbers(name, args)
		if err != nil || !ok {
			return value.Null, err
		}
		if xs[0] <= 0 {
			return nil, extutil.ArgError(name, "argument must be positive")
		}
		if len(xs) == 1 {
			return value.Double(math.Log(xs[0])), nil
		}
		if xs[1] <= 0 || xs[1] == 1 {
			return nil, extutil.ArgError(name, "base must be positive and not 1")
		}
		return value.Double(math.Log(xs[0]) / math.Log(xs[1])), nil
	})
}

// Sign returns sign(n) as the Int -1, 0 or 1.
func Sign() *functions.FunctionDef {
	return numFunc("sign", 1, func(xs []float64) (value.Value, error) {
		switch {
		case xs[0] < 0:
			return value.Int(-1), nil
		case xs[0] > 0:
			return value.Int(1), nil
		}
		return value.Int(0), nil
	})
}

// Trunc returns trunc(n): n truncated toward zero, as an integer.
func Trunc() *functions.FunctionDef {
	return numFunc("trunc", 1, func(xs []float64) (value.Value, error) {
		return extutil.Number(math.Trunc(xs[0])), nil
	})
}

// Clamp returns clamp(n, lo, hi).
func Clamp() *functions.FunctionDef {
	const name = "clamp"
	return functions.Define(name, 3, 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		xs, ok, err := numbers(name, args)
		if err != nil || !ok {
			return value.Null, err
		}
		if xs[1] > xs[2] {
			return nil, extutil.ArgError(name, "lower bound %v exceeds upper bound %v", xs[1], xs[2])
		}
		switch {
		case xs[0] < xs[1]:
			return args[1], nil
		case xs[0] > xs[2]:
			return args[2], nil
		}
		return args[0], nil
	})
}

// RoundTo returns round-to(n, places): n rounded half away from zero to the
// given number of decimal places, computed in decimal arithmetic.
func RoundTo() *functions.FunctionDef {
	const name = "round-to"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		x, ok, err := extutil.Float(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		places, _, err := extutil.Int(name, args[1])
		if err != nil {
			return nil, err
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return value.Double(x), nil
		}
		d := decimal.NewFromFloat(x).Round(int32(places))
		if places <= 0 {
			return value.ParseNumber(d.String())
		}
		f, _ := d.Float64()
		return value.Double(f), nil
	})
}

// Atan2 returns atan2(y, x).
func Atan2() *functions.FunctionDef {
	return numFunc("atan2", 2, func(xs []float64) (value.Value, error) {
		return value.Double(math.Atan2(xs[0], xs[1])), nil
	})
}

// Pow returns pow(x, y).
func Pow() *functions.FunctionDef {
	return numFunc("pow", 2, func(xs []float64) (value.Value, error) {
		return value.Double(math.Pow(xs[0], xs[1])), nil
	})
}

// statFunc defines a function over an array of numbers. Null and empty
// arrays yield null.
func statFunc(name string, maxArgs int, fn func(nums []float64, args []value.Value) (value.Value, error)) *functions.FunctionDef {
	return functions.Define(name, 1, maxArgs, func(_ value.Value, args []value.Value) (value.Value, error) {
		arr, ok, err := extutil.Array(name, args[0])
		if err != nil || !ok || len(arr) == 0 {
			return value.Null, err
		}
		nums, err := extutil.Floats(name, arr)
		if err != nil {
			return nil, err
		}
		return fn(nums, args[1:])
	})
}

func sorted(nums []float64) []float64 {
	s := append([]float64(nil), nums...)
	sort.Float64s(s)
	return s
}

// Median returns median(array).
func Median() *functions.FunctionDef {
	return statFunc("median", 1, func(nums []float64, _ []value.Value) (value.Value, error) {
		s := sorted(nums)
		mid := len(s) / 2
		if len(s)%2 == 0 {
			return value.Double((s[mid-1] + s[mid]) / 2), nil
		}
		return value.Double(s[mid]), nil
	})
}

// variance is the population variance of nums.
func variance(nums []float64) float64 {
	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))
	v := 0.0
	for _, n := range nums {
		v += (n - mean) * (n - mean)
	}
	return v / float64(len(nums))
}

// Variance returns variance(array), the population variance.
func Variance() *functions.FunctionDef {
	return statFunc("variance", 1, func(nums []float64, _ []value.Value) (value.Value, error) {
		return value.Double(variance(nums)), nil
	})
}

// Stddev returns stddev(array), the population standard deviation.
func Stddev() *functions.FunctionDef {
	return statFunc("stddev", 1, func(nums []float64, _ []value.Value) (value.Value, error) {
		return value.Double(math.Sqrt(variance(nums))), nil
	})
}

// Percentile returns percentile(array, p) for p in [0, 100], interpolating
// linearly between the closest ranks.
func Percentile() *functions.FunctionDef {
	const name = "percentile"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		p, ok, err := extutil.Float(name, args[1])
		if err != nil || !ok {
			return value.Null, err
		}
		if p < 0 || p > 100 {
			return nil, extutil.ArgError(name, "p must be between 0 and 100, got %v", p)
		}
		return statFunc(name, 2, func(nums []float64, _ []value.Value) (value.Value, error) {
			s := sorted(nums)
			idx := p / 100 * float64(len(s)-1)
			lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
			frac := idx - float64(lo)
			return value.Double(s[lo]*(1-frac) + s[hi]*frac), nil
		}).Call(value.Null, args)
	})
}

// Mode returns mode(array): the most frequent numbers, in order of first
// appearance.
func Mode() *functions.FunctionDef {
	return statFunc("mode", 1, func(nums []float64, _ []value.Value) (value.Value, error) {
		counts := make(map[float64]int, len(nums))
		best := 0
		for _, n := range nums {
			counts[n]++
			best = max(best, counts[n])
		}
		out := value.Array{}
		for _, n := range nums {
			if counts[n] == best {
				out = append(out, extutil.Number(n))
				counts[n] = 0
			}
		}
		return out, nil
	})
}
