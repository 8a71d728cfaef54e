package evaluator

import (
	"sort"
	"sync"

	"github.com/sandrolain/gojslt/pkg/functions"
)

var (
	builtinFunctions map[string]functions.Function
	builtinMacros    map[string]Macro
	builtinsOnce     sync.Once
)

func builtin(name string, minArgs, maxArgs int, fn functions.Impl) *functions.FunctionDef {
	return functions.Define(name, minArgs, maxArgs, fn)
}

// initBuiltins initializes the built-in function and macro tables.
func initBuiltins() {
	builtinsOnce.Do(func() {
		list := []functions.Function{
			// General
			builtin("contains", 2, 2, fnContains),
			builtin("size", 1, 1, fnSize),
			builtin("error", 1, 1, fnError),
			builtin("min", 2, 2, fnMin),
			builtin("max", 2, 2, fnMax),

			// Numeric
			builtin("is-number", 1, 1, fnIsNumber),
			builtin("is-integer", 1, 1, fnIsInteger),
			builtin("is-decimal", 1, 1, fnIsDecimal),
			builtin("number", 1, 2, fnNumber),
			builtin("round", 1, 1, fnRound),
			builtin("floor", 1, 1, fnFloor),
			builtin("ceiling", 1, 1, fnCeiling),
			builtin("random", 0, 0, fnRandom),
			builtin("sum", 1, 1, fnSum),
			builtin("mod", 2, 2, fnMod),
			builtin("hash-int", 1, 1, fnHashInt),

			// String
			builtin("is-string", 1, 1, fnIsString),
			builtin("string", 1, 1, fnString),
			regexBuiltin("test", 2, 2, fnTest),
			regexBuiltin("capture", 2, 2, fnCapture),
			regexBuiltin("split", 2, 2, fnSplit),
			builtin("join", 2, 2, fnJoin),
			builtin("lowercase", 1, 1, fnLowercase),
			builtin("uppercase", 1, 1, fnUppercase),
			builtin("sha256-hex", 1, 1, fnSha256Hex),
			builtin("starts-with", 2, 2, fnStartsWith),
			builtin("ends-with", 2, 2, fnEndsWith),
			builtin("from-json", 1, 2, fnFromJSON),
			builtin("to-json", 1, 1, fnToJSON),
			regexBuiltin("replace", 3, 3, fnReplace),
			builtin("trim", 1, 1, fnTrim),
			builtin("uuid", 0, 2, fnUUID),

			// Boolean
			builtin("not", 1, 1, fnNot),
			builtin("boolean", 1, 1, fnBoolean),
			builtin("is-boolean", 1, 1, fnIsBoolean),

			// Object
			builtin("is-object", 1, 1, fnIsObject),
			builtin("get-key", 2, 3, fnGetKey),

			// Array
			builtin("array", 1, 1, fnArray),
			builtin("is-array", 1, 1, fnIsArray),
			builtin("flatten", 1, 1, fnFlatten),
			builtin("all", 1, 1, fnAll),
			builtin("any", 1, 1, fnAny),
			builtin("zip", 2, 2, fnZip),
			builtin("zip-with-index", 1, 1, fnZipWithIndex),
			builtin("index-of", 2, 2, fnIndexOf),

			// Time
			builtin("now", 0, 0, fnNow),
			builtin("parse-time", 2, 3, fnParseTime),
			builtin("format-time", 2, 3, fnFormatTime),

			// Misc
			builtin("parse-url", 1, 1, fnParseURL),
		}
		builtinFunctions = make(map[string]functions.Function, len(list))
		for _, f := range list {
			builtinFunctions[f.Name()] = f
		}

		builtinMacros = map[string]Macro{
			"fallback": DefineMacro("fallback", 2, 1024, macroFallback),
		}
	})
}

// Builtin returns the built-in function with the given name.
func Builtin(name string) (functions.Function, bool) {
	initBuiltins()
	f, ok := builtinFunctions[name]
	return f, ok
}

// BuiltinMacro returns the built-in macro with the given name.
func BuiltinMacro(name string) (Macro, bool) {
	initBuiltins()
	m, ok := builtinMacros[name]
	return m, ok
}

// BuiltinNames returns the names of all built-in functions and macros in
// sorted order.
func BuiltinNames() []string {
	initBuiltins()
	names := make([]string, 0, len(builtinFunctions)+len(builtinMacros))
	for name := range builtinFunctions {
		names = append(names, name)
	}
	for name := range builtinMacros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupBuiltin returns the built-in function or macro with the given name.
func LookupBuiltin(name string) (functions.Callable, bool) {
	if m, ok := BuiltinMacro(name); ok {
		return m, true
	}
	if f, ok := Builtin(name); ok {
		return f, true
	}
	return nil, false
}

// IsBuiltinContains reports whether f is the built-in contains function.
func IsBuiltinContains(f functions.Callable) bool {
	c, _ := Builtin("contains")
	return f != nil && f == functions.Callable(c)
}
