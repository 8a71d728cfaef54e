package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// argError reports a bad argument to a builtin function.
func argError(format string, args ...any) error {
	return types.Errorf(types.ErrFunctionArgument, nil, format, args...)
}

// asString returns the text of a string value and the JSON form of any
// other value.
func asString(v value.Value) string {
	if t, ok := v.(value.Text); ok {
		return string(t)
	}
	return value.String(v)
}

// asNullableString is asString with null reported as missing.
func asNullableString(v value.Value) (string, bool) {
	if value.IsNull(v) {
		return "", false
	}
	return asString(v), true
}

// toNumber converts v to a number. Numbers pass through and text is parsed.
// Null yields the fallback, or null without one. Other values are an error
// in strict mode and yield the fallback otherwise. A nil fallback means none
// was given.
func toNumber(v value.Value, strict bool, fallback value.Value) (value.Value, error) {
	switch {
	case value.IsNumber(v):
		return v, nil
	case value.IsNull(v):
		return value.OrNull(fallback), nil
	}
	t, ok := v.(value.Text)
	if !ok {
		if strict {
			return nil, types.Errorf(types.ErrTypeMismatch, nil, "Can't convert %s to number", value.String(v))
		}
		return value.OrNull(fallback), nil
	}
	n, err := value.ParseNumber(string(t))
	if err != nil {
		if fallback != nil {
			return fallback, nil
		}
		return nil, err
	}
	return n, nil
}

// toArray returns v as an array. Null is reported as missing when nullOK
// is set.
func toArray(v value.Value, nullOK bool) (value.Array, bool, error) {
	if a, ok := v.(value.Array); ok {
		return a, true, nil
	}
	if nullOK && value.IsNull(v) {
		return nil, false, nil
	}
	return nil, false, argError("Cannot convert %s to array", value.String(v))
}
