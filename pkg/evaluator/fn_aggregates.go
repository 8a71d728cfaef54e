package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func fnSize(_ value.Value, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Array, *value.Object, value.Text:
		return value.Int(value.Size(v)), nil
	}
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	return nil, argError("Function size() cannot work on %s", value.String(args[0]))
}

// fnMin returns the smaller argument. Null is smaller than anything.
func fnMin(_ value.Value, args []value.Value) (value.Value, error) {
	c, err := value.Compare(args[0], args[1])
	if err != nil {
		return nil, err
	}
	if c < 0 {
		return args[0], nil
	}
	return args[1], nil
}

// fnMax returns the larger argument, or null if either is null.
func fnMax(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) || value.IsNull(args[1]) {
		return value.Null, nil
	}
	c, err := value.Compare(args[0], args[1])
	if err != nil {
		return nil, err
	}
	if c > 0 {
		return args[0], nil
	}
	return args[1], nil
}

func fnAll(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	a, ok := args[0].(value.Array)
	if !ok {
		return nil, argError("all() requires an array, not %s", value.String(args[0]))
	}
	for _, el := range a {
		if !value.IsTrue(el) {
			return value.False, nil
		}
	}
	return value.True, nil
}

func fnAny(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	a, ok := args[0].(value.Array)
	if !ok {
		return nil, argError("any() requires an array, not %s", value.String(args[0]))
	}
	for _, el := range a {
		if value.IsTrue(el) {
			return value.True, nil
		}
	}
	return value.False, nil
}

// fnError aborts the evaluation with the argument as message.
func fnError(_ value.Value, args []value.Value) (value.Value, error) {
	return nil, types.Errorf(types.ErrUserError, nil, "error: %s", asString(args[0]))
}
