package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/value"
)

func fnIsString(_ value.Value, args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Text)
	return value.Boolean(ok), nil
}

func fnIsNumber(_ value.Value, args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsNumber(args[0])), nil
}

func fnIsInteger(_ value.Value, args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsIntegral(args[0])), nil
}

func fnIsDecimal(_ value.Value, args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsDecimal(args[0])), nil
}

func fnIsBoolean(_ value.Value, args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Bool)
	return value.Boolean(ok), nil
}

func fnIsObject(_ value.Value, args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Object)
	return value.Boolean(ok), nil
}

func fnIsArray(_ value.Value, args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Array)
	return value.Boolean(ok), nil
}

// fnString keeps strings as they are and renders everything else as JSON.
func fnString(_ value.Value, args []value.Value) (value.Value, error) {
	if t, ok := args[0].(value.Text); ok {
		return t, nil
	}
	return value.Text(value.String(args[0])), nil
}

func fnNot(_ value.Value, args []value.Value) (value.Value, error) {
	return value.Boolean(!value.IsTrue(args[0])), nil
}

func fnBoolean(_ value.Value, args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsTrue(args[0])), nil
}
