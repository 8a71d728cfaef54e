package evaluator

import (
	"strings"

	"github.com/sandrolain/gojslt/pkg/value"
)

// fnJoin concatenates the elements of an array with a separator. String
// elements are used as they are, others in their JSON form.
func fnJoin(_ value.Value, args []value.Value) (value.Value, error) {
	arr, ok, err := toArray(args[0], true)
	if err != nil || !ok {
		return value.Null, err
	}
	sep := asString(args[1])
	var sb strings.Builder
	for i, el := range arr {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(asString(el))
	}
	return value.Text(sb.String()), nil
}

func fnLowercase(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	return value.Text(strings.ToLower(asString(args[0]))), nil
}

func fnUppercase(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	return value.Text(strings.ToUpper(asString(args[0]))), nil
}

func fnStartsWith(_ value.Value, args []value.Value) (value.Value, error) {
	s, ok := asNullableString(args[0])
	if !ok {
		return value.False, nil
	}
	return value.Boolean(strings.HasPrefix(s, asString(args[1]))), nil
}

func fnEndsWith(_ value.Value, args []value.Value) (value.Value, error) {
	s, ok := asNullableString(args[0])
	if !ok {
		return value.False, nil
	}
	return value.Boolean(strings.HasSuffix(s, asString(args[1]))), nil
}

// fnTrim removes leading and trailing whitespace and control characters.
func fnTrim(_ value.Value, args []value.Value) (value.Value, error) {
	s, ok := asNullableString(args[0])
	if !ok {
		return value.Null, nil
	}
	return value.Text(strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })), nil
}
