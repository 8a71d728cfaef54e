package functions

import (
	"fmt"
	"math"
	"reflect"

	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

var (
	valueType = reflect.TypeFor[value.Value]()
	errorType = reflect.TypeFor[error]()
)

// toGo converts an argument to the parameter type it was built for.
type toGo func(v value.Value) (reflect.Value, error)

// wrapped is a Function calling an ordinary Go function through reflection.
type wrapped struct {
	name   string
	fn     reflect.Value
	params []toGo
	hasErr bool
}

// Wrap exposes an existing Go function to templates under name. Parameters
// and the first result may be string, bool, int, int64, float64 or
// value.Value; an optional second result must be error. The function takes
// exactly as many arguments as it has parameters.
//
//	upper, err := functions.Wrap("upper", strings.ToUpper)
//
// Unsupported signatures are rejected here rather than at call time.
func Wrap(name string, fn any) (Function, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("wrap %s: %T is not a function", name, fn)
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("wrap %s: variadic functions are not supported", name)
	}

	w := &wrapped{name: name, fn: rv, params: make([]toGo, ft.NumIn())}
	for i := range ft.NumIn() {
		conv, ok := argConverter(ft.In(i))
		if !ok {
			return nil, fmt.Errorf("wrap %s: unsupported parameter type %s", name, ft.In(i))
		}
		w.params[i] = conv
	}

	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("wrap %s: second result must be error, not %s", name, ft.Out(1))
		}
		w.hasErr = true
	default:
		return nil, fmt.Errorf("wrap %s: want 1 result or (result, error), got %d results", name, ft.NumOut())
	}
	if !supportedResult(ft.Out(0)) {
		return nil, fmt.Errorf("wrap %s: unsupported result type %s", name, ft.Out(0))
	}
	return w, nil
}

// MustWrap is like Wrap but panics on an unsupported signature.
func MustWrap(name string, fn any) Function {
	f, err := Wrap(name, fn)
	if err != nil {
		panic(err)
	}
	return f
}

func (w *wrapped) Name() string      { return w.name }
func (w *wrapped) MinArguments() int { return len(w.params) }
func (w *wrapped) MaxArguments() int { return len(w.params) }

func (w *wrapped) Call(_ value.Value, args []value.Value) (value.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := w.params[i](value.OrNull(arg))
		if err != nil {
			return nil, types.Errorf(types.ErrFunctionArgument, nil, "%s: argument %d: %v", w.name, i+1, err)
		}
		in[i] = v
	}

	out := w.fn.Call(in)
	if w.hasErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return fromGo(out[0]), nil
}

func fromGo(r reflect.Value) value.Value {
	switch r.Kind() {
	case reflect.String:
		return value.Text(r.String())
	case reflect.Bool:
		return value.Boolean(r.Bool())
	case reflect.Int, reflect.Int64:
		return value.NarrowLong(r.Int())
	case reflect.Float64:
		return value.Double(r.Float())
	}
	if r.IsNil() {
		return value.Null
	}
	return r.Interface().(value.Value)
}

func argConverter(t reflect.Type) (toGo, bool) {
	if t == valueType {
		return func(v value.Value) (reflect.Value, error) {
			return reflect.ValueOf(&v).Elem(), nil
		}, true
	}
	switch t.Kind() {
	case reflect.String:
		return func(v value.Value) (reflect.Value, error) {
			if s, ok := v.(value.Text); ok {
				return reflect.ValueOf(string(s)).Convert(t), nil
			}
			if value.IsNull(v) {
				return reflect.Zero(t), nil
			}
			return reflect.Value{}, fmt.Errorf("cannot convert %s to string", value.String(v))
		}, true
	case reflect.Bool:
		return func(v value.Value) (reflect.Value, error) {
			if b, ok := v.(value.Bool); ok {
				return reflect.ValueOf(bool(b)).Convert(t), nil
			}
			return reflect.Value{}, fmt.Errorf("cannot convert %s to boolean", value.String(v))
		}, true
	case reflect.Int, reflect.Int64:
		return func(v value.Value) (reflect.Value, error) {
			n, err := integral(v)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(n).Convert(t), nil
		}, true
	case reflect.Float64:
		return func(v value.Value) (reflect.Value, error) {
			f, ok := value.ToFloat(v)
			if !ok {
				return reflect.Value{}, fmt.Errorf("cannot convert %s to double", value.String(v))
			}
			return reflect.ValueOf(f).Convert(t), nil
		}, true
	}
	return nil, false
}

// integral truncates any number that fits in an int64 toward zero.
func integral(v value.Value) (int64, error) {
	if n, ok := value.ToInt64(v); ok {
		return n, nil
	}
	f, ok := value.ToFloat(v)
	if !ok {
		return 0, fmt.Errorf("cannot convert %s to integer", value.String(v))
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s is out of integer range", value.String(v))
	}
	return int64(f), nil
}

func supportedResult(t reflect.Type) bool {
	if t == valueType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int64, reflect.Float64:
		return true
	}
	return false
}
