package value

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/gojslt/pkg/types"
)

// FromNative converts a Go value into a Value. It accepts the shapes produced
// by encoding/json and yaml decoding, Go numeric types, big numbers and
// values that already implement Value. Map keys are sorted since Go maps
// carry no order.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case bool:
		return Boolean(t), nil
	case string:
		return Text(t), nil
	case int:
		return NarrowLong(int64(t)), nil
	case int8:
		return Int(t), nil
	case int16:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return NarrowLong(t), nil
	case uint8:
		return Int(t), nil
	case uint16:
		return Int(t), nil
	case uint32:
		return NarrowLong(int64(t)), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Double(t), nil
	case float64:
		return Double(t), nil
	case json.Number:
		return ParseNumberLiteral(t.String())
	case *big.Int:
		return BigInt{v: new(big.Int).Set(t)}, nil
	case decimal.Decimal:
		return BigDecimal{v: t}, nil
	case []Value:
		return Array(t), nil
	case []any:
		out := make(Array, 0, len(t))
		for _, el := range t {
			v, err := FromNative(el)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject(len(keys))
		for _, k := range keys {
			v, err := FromNative(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	case map[string]Value:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject(len(keys))
		for _, k := range keys {
			obj.Set(k, t[k])
		}
		return obj, nil
	}

	// Fall back to reflection for typed slices and maps.
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Array, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return FromNative(m)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return Null, nil
		}
		return FromNative(rv.Elem().Interface())
	}
	return nil, types.Errorf(types.ErrTypeMismatch, nil, "can't convert %T to a value", x)
}

func fromUint(u uint64) Value {
	if u <= 1<<63-1 {
		return NarrowLong(int64(u))
	}
	return BigInt{v: new(big.Int).SetUint64(u)}
}

// MustFromNative is FromNative that panics on error. It is meant for tests
// and static tables.
func MustFromNative(x any) Value {
	v, err := FromNative(x)
	if err != nil {
		panic(fmt.Sprintf("value: MustFromNative(%T): %v", x, err))
	}
	return v
}

// ToNative converts v into plain Go values: nil, bool, string, int32, int64,
// *big.Int, float64, decimal.Decimal, []any and map[string]any.
func ToNative(v Value) any {
	switch x := OrNull(v).(type) {
	case null:
		return nil
	case Bool:
		return bool(x)
	case Text:
		return string(x)
	case Int:
		return int32(x)
	case Long:
		return int64(x)
	case BigInt:
		return new(big.Int).Set(x.Big())
	case Double:
		return float64(x)
	case BigDecimal:
		return x.v
	case Array:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = ToNative(el)
		}
		return out
	case *Object:
		out := make(map[string]any, x.Len())
		x.Range(func(k string, el Value) bool {
			out[k] = ToNative(el)
			return true
		})
		return out
	}
	return nil
}
