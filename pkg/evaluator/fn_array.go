package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/value"
)

// fnArray converts an object to an array of key/value pairs. Arrays and
// null pass through.
func fnArray(_ value.Value, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Array:
		return v, nil
	case *value.Object:
		return value.ConvertObjectToArray(v), nil
	}
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	return nil, argError("array() cannot convert %s", value.String(args[0]))
}

func fnFlatten(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	a, ok := args[0].(value.Array)
	if !ok {
		return nil, argError("flatten() cannot operate on %s", value.String(args[0]))
	}
	return flattenInto(value.Array{}, a), nil
}

func flattenInto(out, a value.Array) value.Array {
	for _, el := range a {
		if inner, ok := el.(value.Array); ok {
			out = flattenInto(out, inner)
			continue
		}
		out = append(out, el)
	}
	return out
}

func fnZip(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) || value.IsNull(args[1]) {
		return value.Null, nil
	}
	a, aok := args[0].(value.Array)
	b, bok := args[1].(value.Array)
	if !aok || !bok {
		return nil, argError("zip() requires arrays")
	}
	if len(a) != len(b) {
		return nil, argError("zip() arrays were of unequal size")
	}
	out := make(value.Array, len(a))
	for i := range a {
		out[i] = value.Array{a[i], b[i]}
	}
	return out, nil
}

func fnZipWithIndex(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	a, ok := args[0].(value.Array)
	if !ok {
		return nil, argError("zip-with-index() argument must be an array")
	}
	out := make(value.Array, len(a))
	for i, el := range a {
		pair := value.NewObject(2)
		pair.Set("index", value.Int(i))
		pair.Set("value", el)
		out[i] = pair
	}
	return out, nil
}

func fnIndexOf(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	a, ok := args[0].(value.Array)
	if !ok {
		return nil, argError("index-of() first argument must be an array")
	}
	for i, el := range a {
		if value.Equal(el, args[1]) {
			return value.Int(i), nil
		}
	}
	return value.Int(-1), nil
}
