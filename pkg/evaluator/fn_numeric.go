package evaluator

import (
	"math"
	"math/big"
	"math/rand/v2"

	"github.com/sandrolain/gojslt/pkg/value"
)

func fnNumber(_ value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 1 {
		return toNumber(args[0], true, nil)
	}
	return toNumber(args[0], false, args[1])
}

func fnRound(_ value.Value, args []value.Value) (value.Value, error) {
	return rounding("round", args[0], func(f float64) float64 { return math.Floor(f + 0.5) })
}

func fnFloor(_ value.Value, args []value.Value) (value.Value, error) {
	return rounding("floor", args[0], math.Floor)
}

func fnCeiling(_ value.Value, args []value.Value) (value.Value, error) {
	return rounding("ceiling", args[0], math.Ceil)
}

// rounding applies fn to a number and returns the result as a Long,
// saturating at the bounds of the Long range.
func rounding(name string, v value.Value, fn func(float64) float64) (value.Value, error) {
	if value.IsNull(v) {
		return value.Null, nil
	}
	if !value.IsNumber(v) {
		return nil, argError("%s() cannot round a non-number: %s", name, value.String(v))
	}
	if value.IsIntegral(v) {
		if n, ok := value.ToInt64(v); ok {
			return value.Long(n), nil
		}
	}
	f, _ := value.ToFloat(v)
	return value.Long(saturate(fn(f))), nil
}

func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func fnRandom(_ value.Value, _ []value.Value) (value.Value, error) {
	return value.Double(rand.Float64()), nil
}

// fnSum adds the numbers of an array. The sum is a Long when every element
// is integral and a Double otherwise.
func fnSum(_ value.Value, args []value.Value) (value.Value, error) {
	arr := args[0]
	if value.IsNull(arr) {
		return value.Null, nil
	}
	a, ok := arr.(value.Array)
	if !ok {
		return nil, argError("sum(): argument must be array, was %s", value.String(arr))
	}
	var sum float64
	integral := true
	for _, el := range a {
		f, ok := value.ToFloat(el)
		if !ok {
			return nil, argError("sum(): array must contain numbers, found %s", value.String(el))
		}
		integral = integral && value.IsIntegral(el)
		sum += f
	}
	if integral {
		return value.Long(saturate(sum)), nil
	}
	return value.Double(sum), nil
}

// fnMod computes a remainder that is never negative.
func fnMod(_ value.Value, args []value.Value) (value.Value, error) {
	dividend, divisor := args[0], args[1]
	if value.IsNull(dividend) {
		return value.Null, nil
	}
	if !value.IsNumber(dividend) {
		return nil, argError("mod(): dividend cannot be a non-number: %s", value.String(dividend))
	}
	if value.IsNull(divisor) {
		return value.Null, nil
	}
	if !value.IsNumber(divisor) {
		return nil, argError("mod(): divisor cannot be a non-number: %s", value.String(divisor))
	}
	if !value.IsIntegral(dividend) || !value.IsIntegral(divisor) {
		return nil, argError("mod(): operands must be integral types")
	}

	x, xok := value.ToInt64(dividend)
	y, yok := value.ToInt64(divisor)
	if xok && yok {
		if y == 0 {
			return nil, argError("mod(): cannot divide by zero")
		}
		r := x % y
		if r < 0 {
			if y > 0 {
				r += y
			} else {
				r -= y
			}
		}
		return value.Long(r), nil
	}

	bx, by := bigOf(dividend), bigOf(divisor)
	if by.Sign() == 0 {
		return nil, argError("mod(): cannot divide by zero")
	}
	// Euclidean modulus is always non-negative.
	return value.NewBigInt(new(big.Int).Mod(bx, by)), nil
}

func bigOf(v value.Value) *big.Int {
	if b, ok := v.(value.BigInt); ok {
		return b.Big()
	}
	n, _ := value.ToInt64(v)
	return big.NewInt(n)
}
