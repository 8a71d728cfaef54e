package value

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/gojslt/pkg/types"
)

// ParseNumber converts text to a number the way the number() function does.
//
// Integer text shorter than 10 characters becomes Int, shorter than 19
// becomes Long and anything longer becomes BigInt. Text with a fraction or
// exponent becomes Double.
func ParseNumber(s string) (Value, error) {
	if !isNumberSyntax(s) {
		return nil, types.Errorf(types.ErrTypeMismatch, nil, "number(%s) failed: not a number", quoteString(s))
	}
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !isRangeError(err) {
			return nil, types.Errorf(types.ErrTypeMismatch, nil, "number(%s) failed: not a number", quoteString(s))
		}
		return Double(f), nil
	}
	switch {
	case len(s) < 10:
		n, _ := strconv.ParseInt(s, 10, 32)
		return Int(n), nil
	case len(s) < 19:
		n, _ := strconv.ParseInt(s, 10, 64)
		return Long(n), nil
	default:
		b, _ := new(big.Int).SetString(s, 10)
		return BigInt{v: b}, nil
	}
}

// ParseNumberLiteral classifies a numeric literal in template or JSON text.
//
// Integers become the narrowest of Int, Long and BigInt that holds them.
// Numbers with a fraction or exponent become Double, unless the Double would
// overflow to infinity, in which case they become BigDecimal.
func ParseNumberLiteral(s string) (Value, error) {
	if !isNumberSyntax(s) {
		return nil, types.Errorf(types.ErrInvalidNumber, nil, "invalid number literal %q", s)
	}
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return Double(f), nil
		}
		if !isRangeError(err) {
			return nil, types.Errorf(types.ErrInvalidNumber, nil, "invalid number literal %q", s)
		}
		if !math.IsInf(f, 0) {
			// underflow to zero
			return Double(f), nil
		}
		d, derr := decimal.NewFromString(s)
		if derr != nil {
			return nil, types.Errorf(types.ErrInvalidNumber, nil, "invalid number literal %q", s).WithCause(derr)
		}
		return BigDecimal{v: d}, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return Int(n), nil
		}
		return Long(n), nil
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, types.Errorf(types.ErrInvalidNumber, nil, "invalid number literal %q", s)
	}
	return BigInt{v: b}, nil
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// isNumberSyntax checks s against the JSON number grammar.
func isNumberSyntax(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		fs := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == fs {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		es := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == es {
			return false
		}
	}
	return i == len(s)
}

// FormatDouble renders f the way Double values are written to JSON.
// Integral values keep a trailing ".0"; non-finite values render as null.
func FormatDouble(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64) + ".0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToFloat returns the numeric value of v as a float64.
func ToFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Long:
		return float64(n), true
	case BigInt:
		f, _ := new(big.Float).SetInt(n.Big()).Float64()
		return f, true
	case Double:
		return float64(n), true
	case BigDecimal:
		f, _ := n.v.Float64()
		return f, true
	}
	return 0, false
}

// ToInt64 returns the value of an integral v that fits in an int64.
func ToInt64(v Value) (int64, bool) {
	switch n := v.(type) {
	case Int:
		return int64(n), true
	case Long:
		return int64(n), true
	case BigInt:
		if n.Big().IsInt64() {
			return n.Big().Int64(), true
		}
	}
	return 0, false
}

// toBig widens an integral value to a big.Int. The result is always fresh.
func toBig(v Value) *big.Int {
	switch n := v.(type) {
	case Int:
		return big.NewInt(int64(n))
	case Long:
		return big.NewInt(int64(n))
	case BigInt:
		return new(big.Int).Set(n.Big())
	}
	return new(big.Int)
}

// toDecimal widens any finite number to a decimal.
func toDecimal(v Value) decimal.Decimal {
	switch n := v.(type) {
	case Int:
		return decimal.NewFromInt(int64(n))
	case Long:
		return decimal.NewFromInt(int64(n))
	case BigInt:
		return decimal.NewFromBigInt(n.Big(), 0)
	case Double:
		return decimal.NewFromFloat(float64(n))
	case BigDecimal:
		return n.v
	}
	return decimal.Zero
}

// isFinite reports whether v is a number other than a NaN or infinite Double.
func isFinite(v Value) bool {
	if d, ok := v.(Double); ok {
		return !math.IsNaN(float64(d)) && !math.IsInf(float64(d), 0)
	}
	return true
}

// NarrowLong returns n as Int when it fits, otherwise as Long.
func NarrowLong(n int64) Value {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return Int(n)
	}
	return Long(n)
}
