// Package extobject provides object functions beyond the builtins. Results
// keep the key order of their input objects.
package extobject

import (
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/ext/extutil"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

// URI is the name the object module is imported by.
const URI = "ext:object"

// All returns the plain functions of the package.
func All() []functions.Function {
	return []functions.Function{
		Keys(),
		Values(),
		Pairs(),
		FromPairs(),
		Pick(),
		Omit(),
		DeepMerge(),
		Invert(),
		Rename(),
	}
}

// Macros returns the per-entry macros of the package.
func Macros() []*evaluator.MacroDef {
	return []*evaluator.MacroDef{MapValues(), MapKeys()}
}

// Module returns functions and macros as an importable module.
func Module() *functions.MapModule {
	var cs []functions.Callable
	for _, f := range All() {
		cs = append(cs, f)
	}
	for _, m := range Macros() {
		cs = append(cs, m)
	}
	return functions.NewModule(cs...)
}

func objectFunc(name string, minArgs, maxArgs int, fn func(obj *value.Object, args []value.Value) (value.Value, error)) *functions.FunctionDef {
	return functions.Define(name, minArgs, maxArgs, func(_ value.Value, args []value.Value) (value.Value, error) {
		obj, ok, err := extutil.Object(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		return fn(obj, args[1:])
	})
}

// Keys returns keys(object).
func Keys() *functions.FunctionDef {
	return objectFunc("keys", 1, 1, func(obj *value.Object, _ []value.Value) (value.Value, error) {
		out := make(value.Array, 0, obj.Len())
		for _, k := range obj.Keys() {
			out = append(out, value.Text(k))
		}
		return out, nil
	})
}

// Values returns values(object).
func Values() *functions.FunctionDef {
	return objectFunc("values", 1, 1, func(obj *value.Object, _ []value.Value) (value.Value, error) {
		out := make(value.Array, 0, obj.Len())
		obj.Range(func(_ string, v value.Value) bool {
			out = append(out, v)
			return true
		})
		return out, nil
	})
}

// Pairs returns pairs(object): [key, value] arrays.
func Pairs() *functions.FunctionDef {
	return objectFunc("pairs", 1, 1, func(obj *value.Object, _ []value.Value) (value.Value, error) {
		out := make(value.Array, 0, obj.Len())
		obj.Range(func(k string, v value.Value) bool {
			out = append(out, value.Array{value.Text(k), v})
			return true
		})
		return out, nil
	})
}

// FromPairs returns from-pairs(array): the inverse of pairs. Later pairs
// replace earlier ones with the same key.
func FromPairs() *functions.FunctionDef {
	const name = "from-pairs"
	return functions.Define(name, 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		arr, ok, err := extutil.Array(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		out := value.NewObject(len(arr))
		for i, el := range arr {
			pair, isArr := el.(value.Array)
			if !isArr || len(pair) != 2 {
				return nil, extutil.ArgError(name, "element %d must be a [key, value] pair", i)
			}
			key, isText := pair[0].(value.Text)
			if !isText {
				return nil, extutil.ArgError(name, "key of element %d must be a string", i)
			}
			out.Set(string(key), pair[1])
		}
		return out, nil
	})
}

// keySet reads an array of key names.
func keySet(name string, v value.Value) (map[string]struct{}, error) {
	arr, _, err := extutil.Array(name, v)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(arr))
	for _, el := range arr {
		k, ok := el.(value.Text)
		if !ok {
			return nil, extutil.ArgError(name, "keys must be strings, got %s", value.String(el))
		}
		keys[string(k)] = struct{}{}
	}
	return keys, nil
}

func filterKeys(name string, keep bool) *functions.FunctionDef {
	return objectFunc(name, 2, 2, func(obj *value.Object, args []value.Value) (value.Value, error) {
		keys, err := keySet(name, args[0])
		if err != nil {
			return nil, err
		}
		out := value.NewObject(len(keys))
		obj.Range(func(k string, v value.Value) bool {
			if _, listed := keys[k]; listed == keep {
				out.Set(k, v)
			}
			return true
		})
		return out, nil
	})
}

// Pick returns pick(object, keys): only the listed keys.
func Pick() *functions.FunctionDef { return filterKeys("pick", true) }

// Omit returns omit(object, keys): all but the listed keys.
func Omit() *functions.FunctionDef { return filterKeys("omit", false) }

// DeepMerge returns deep-merge(array): objects merged left to right. Nested
// objects are merged recursively; any other value of a later object
// replaces the earlier one.
func DeepMerge() *functions.FunctionDef {
	const name = "deep-merge"
	return functions.Define(name, 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		arr, ok, err := extutil.Array(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		out := value.NewObject(0)
		for i, el := range arr {
			obj, isObj := el.(*value.Object)
			if !isObj {
				if value.IsNull(el) {
					continue
				}
				return nil, extutil.ArgError(name, "element %d is not an object", i)
			}
			out = merge(out, obj)
		}
		return out, nil
	})
}

func merge(dst, src *value.Object) *value.Object {
	out := dst.Clone()
	src.Range(func(k string, v value.Value) bool {
		if sv, ok := v.(*value.Object); ok {
			if dv, ok := out.Field(k).(*value.Object); ok {
				out.Set(k, merge(dv, sv))
				return true
			}
		}
		out.Set(k, v)
		return true
	})
	return out
}

// Invert returns invert(object): values become keys. Non-string values are
// used in their JSON form.
func Invert() *functions.FunctionDef {
	return objectFunc("invert", 1, 1, func(obj *value.Object, _ []value.Value) (value.Value, error) {
		out := value.NewObject(obj.Len())
		obj.Range(func(k string, v value.Value) bool {
			key := value.String(v)
			if t, ok := v.(value.Text); ok {
				key = string(t)
			}
			out.Set(key, value.Text(k))
			return true
		})
		return out, nil
	})
}

// Rename returns rename(object, mapping): keys found in mapping are replaced
// by the string they map to.
func Rename() *functions.FunctionDef {
	const name = "rename"
	return objectFunc(name, 2, 2, func(obj *value.Object, args []value.Value) (value.Value, error) {
		mapping, _, err := extutil.Object(name, args[0])
		if err != nil {
			return nil, err
		}
		out := value.NewObject(obj.Len())
		var renameErr error
		obj.Range(func(k string, v value.Value) bool {
			if mapping != nil {
				if to, found := mapping.Get(k); found {
					t, ok := to.(value.Text)
					if !ok {
						renameErr = extutil.ArgError(name, "new name for %q must be a string", k)
						return false
					}
					k = string(t)
				}
			}
			out.Set(k, v)
			return true
		})
		if renameErr != nil {
			return nil, renameErr
		}
		return out, nil
	})
}

// entryMacro evaluates args[1] once per entry of the object args[0], with
// {"key": k, "value": v} as input.
func entryMacro(name string, fn func(out *value.Object, key string, v, result value.Value) error) *evaluator.MacroDef {
	return evaluator.DefineMacro(name, 2, 2, func(s *evaluator.Scope, input value.Value, args []evaluator.Node) (value.Value, error) {
		objv, err := evaluator.Eval(args[0], s, input)
		if err != nil {
			return nil, err
		}
		obj, ok, err := extutil.Object(name, objv)
		if err != nil || !ok {
			return value.Null, err
		}
		out := value.NewObject(obj.Len())
		var evalErr error
		obj.Range(func(k string, v value.Value) bool {
			entry := value.ObjectOf("key", value.Text(k), "value", v)
			var res value.Value
			if res, evalErr = evaluator.Eval(args[1], s, entry); evalErr != nil {
				return false
			}
			evalErr = fn(out, k, v, res)
			return evalErr == nil
		})
		if evalErr != nil {
			return nil, evalErr
		}
		return out, nil
	})
}

// MapValues returns map-values(object, expr): each value replaced by expr
// evaluated on the entry.
func MapValues() *evaluator.MacroDef {
	return entryMacro("map-values", func(out *value.Object, key string, _, res value.Value) error {
		out.Set(key, res)
		return nil
	})
}

// MapKeys returns map-keys(object, expr): each key replaced by the string expr
// yields for the entry.
func MapKeys() *evaluator.MacroDef {
	const name = "map-keys"
	return entryMacro(name, func(out *value.Object, _ string, v, res value.Value) error {
		k, ok := res.(value.Text)
		if !ok {
			return extutil.ArgError(name, "key must be a string, got %s", value.String(res))
		}
		out.Set(string(k), v)
		return nil
	})
}
