// Package extutil provides argument helpers shared by the ext sub-packages.
//
// The helpers follow the conventions of the builtins: a null argument is
// reported through ok=false so that the function can return null, and any
// other unexpected type is an R0203 error naming the function.
package extutil

import (
	"math"

	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// ArgError builds an argument error prefixed with the function name.
func ArgError(fn, format string, args ...any) error {
	return types.Errorf(types.ErrFunctionArgument, nil, fn+": "+format, args...)
}

// Text returns the string held by v.
func Text(fn string, v value.Value) (string, bool, error) {
	switch x := value.OrNull(v).(type) {
	case value.Text:
		return string(x), true, nil
	default:
		if value.IsNull(x) {
			return "", false, nil
		}
		return "", false, ArgError(fn, "expected a string, got %s", value.String(x))
	}
}

// Float returns the number held by v as a float64.
func Float(fn string, v value.Value) (float64, bool, error) {
	if value.IsNull(v) {
		return 0, false, nil
	}
	f, ok := value.ToFloat(v)
	if !ok {
		return 0, false, ArgError(fn, "expected a number, got %s", value.String(v))
	}
	return f, true, nil
}

// Int returns the integral part of the number held by v.
func Int(fn string, v value.Value) (int, bool, error) {
	if value.IsNull(v) {
		return 0, false, nil
	}
	if n, ok := value.ToInt64(v); ok {
		return int(n), true, nil
	}
	f, ok := value.ToFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, ArgError(fn, "expected a number, got %s", value.String(v))
	}
	return int(f), true, nil
}

// Array returns the elements of the array held by v.
func Array(fn string, v value.Value) (value.Array, bool, error) {
	switch x := value.OrNull(v).(type) {
	case value.Array:
		return x, true, nil
	default:
		if value.IsNull(x) {
			return nil, false, nil
		}
		return nil, false, ArgError(fn, "expected an array, got %s", value.String(x))
	}
}

// Object returns the object held by v.
func Object(fn string, v value.Value) (*value.Object, bool, error) {
	switch x := value.OrNull(v).(type) {
	case *value.Object:
		return x, true, nil
	default:
		if value.IsNull(x) {
			return nil, false, nil
		}
		return nil, false, ArgError(fn, "expected an object, got %s", value.String(x))
	}
}

// Floats converts every element of arr to float64.
func Floats(fn string, arr value.Array) ([]float64, error) {
	out := make([]float64, len(arr))
	for i, el := range arr {
		f, ok := value.ToFloat(el)
		if !ok {
			return nil, ArgError(fn, "element %d is not a number: %s", i, value.String(el))
		}
		out[i] = f
	}
	return out, nil
}

// Number returns f as an Int or Long when it is integral, otherwise as a
// Double.
func Number(f float64) value.Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return value.NarrowLong(int64(f))
	}
	return value.Double(f)
}

// Module groups fns into an importable module.
func Module(fns []functions.Function) *functions.MapModule {
	cs := make([]functions.Callable, len(fns))
	for i, f := range fns {
		cs[i] = f
	}
	return functions.NewModule(cs...)
}
