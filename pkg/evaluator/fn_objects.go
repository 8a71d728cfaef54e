package evaluator

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

func fnGetKey(_ value.Value, args []value.Value) (value.Value, error) {
	key, ok := asNullableString(args[1])
	if !ok {
		return value.Null, nil
	}
	switch obj := args[0].(type) {
	case *value.Object:
		if v, found := obj.Get(key); found {
			return v, nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return value.Null, nil
	}
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	return nil, argError("get-key: can't look up keys in %s", value.String(args[0]))
}

// fnContains reports whether the second argument contains the first: as an
// element of an array, a key of an object or a substring of a string.
func fnContains(_ value.Value, args []value.Value) (value.Value, error) {
	needle, haystack := args[0], args[1]
	switch h := haystack.(type) {
	case value.Array:
		for _, el := range h {
			if value.Equal(el, needle) {
				return value.True, nil
			}
		}
		return value.False, nil
	case *value.Object:
		key, ok := asNullableString(needle)
		return value.Boolean(ok && h.Has(key)), nil
	case value.Text:
		sub, ok := asNullableString(needle)
		return value.Boolean(ok && strings.Contains(string(h), sub)), nil
	}
	if value.IsNull(haystack) {
		return value.False, nil
	}
	return nil, argError("Contains cannot operate on %s", value.String(haystack))
}

// StaticContainsThreshold is the number of elements a literal array must
// exceed before contains() over it is answered from a hash set.
const StaticContainsThreshold = 10

// StaticContains answers contains(x, <literal array>) from a hash set built
// once. Numbers that compare equal hash alike.
type StaticContains struct {
	buckets map[uint64][]value.Value
}

// NewStaticContains builds the set from the elements of arr.
func NewStaticContains(arr value.Array) *StaticContains {
	sc := &StaticContains{buckets: make(map[uint64][]value.Value, len(arr))}
	for _, el := range arr {
		h := setHash(el)
		sc.buckets[h] = append(sc.buckets[h], el)
	}
	return sc
}

func setHash(v value.Value) uint64 {
	return xxhash.Sum64(appendCanonical(nil, v, true))
}

func (*StaticContains) Name() string      { return "optimized-static-contains" }
func (*StaticContains) MinArguments() int { return 2 }
func (*StaticContains) MaxArguments() int { return 2 }

// Call implements functions.Function. The second argument is ignored; it is
// the literal the set was built from.
func (sc *StaticContains) Call(_ value.Value, args []value.Value) (value.Value, error) {
	for _, el := range sc.buckets[setHash(args[0])] {
		if value.Equal(el, args[0]) {
			return value.True, nil
		}
	}
	return value.False, nil
}

var _ functions.Function = (*StaticContains)(nil)
