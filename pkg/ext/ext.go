// Package ext bundles the optional extension libraries.
//
// The libraries live in sub-packages grouped by category:
//   - extstring  – camel-case, snake-case, pad-left, template, ...
//   - extnumeric – log, sign, clamp, round-to, trigonometry, median, ...
//   - extarray   – first, last, chunk, set operations, range, sort-by, ...
//   - extobject  – keys, values, pick, omit, deep-merge, map-values, ...
//   - extcrypto  – hash, hmac, base64, name-based and time-ordered UUIDs
//
// # All functions without a prefix
//
//	expr, err := compiler.Compile(src, ext.WithAll())
//
// Plain functions then shadow nothing but each other; a def in the template
// still wins over them.
//
// # As importable modules
//
//	expr, err := compiler.Compile(`import "ext:array" as a a:sort-by(., .age)`, ext.WithModules())
//
// Macros such as sort-by and map-values are only available this way.
package ext

import (
	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext/extarray"
	"github.com/sandrolain/gojslt/pkg/ext/extcrypto"
	"github.com/sandrolain/gojslt/pkg/ext/extnumeric"
	"github.com/sandrolain/gojslt/pkg/ext/extobject"
	"github.com/sandrolain/gojslt/pkg/ext/extstring"
	"github.com/sandrolain/gojslt/pkg/functions"
)

// All returns the plain functions of every sub-package.
func All() []functions.Function {
	var all []functions.Function
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extarray.All()...)
	all = append(all, extobject.All()...)
	all = append(all, extcrypto.All()...)
	return all
}

// Modules returns every sub-package as a module, keyed by the name templates
// import it by.
func Modules() map[string]functions.Module {
	return map[string]functions.Module{
		extstring.URI:  extstring.Module(),
		extnumeric.URI: extnumeric.Module(),
		extarray.URI:   extarray.Module(),
		extobject.URI:  extobject.Module(),
		extcrypto.URI:  extcrypto.Module(),
	}
}

// WithAll registers every plain extension function.
func WithAll() compiler.Option {
	return compiler.WithFunctions(All()...)
}

// WithModules makes every sub-package importable by its URI.
func WithModules() compiler.Option {
	mods := Modules()
	return func(o *compiler.Options) {
		for name, m := range mods {
			compiler.WithNamedModule(name, m)(o)
		}
	}
}

// WithString registers the string functions.
func WithString() compiler.Option { return compiler.WithFunctions(extstring.All()...) }

// WithNumeric registers the numeric functions.
func WithNumeric() compiler.Option { return compiler.WithFunctions(extnumeric.All()...) }

// WithArray registers the plain array functions.
func WithArray() compiler.Option { return compiler.WithFunctions(extarray.All()...) }

// WithObject registers the plain object functions.
func WithObject() compiler.Option { return compiler.WithFunctions(extobject.All()...) }

// WithCrypto registers the crypto functions.
func WithCrypto() compiler.Option { return compiler.WithFunctions(extcrypto.All()...) }
