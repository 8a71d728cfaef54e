// Package experimental holds callables that may become builtins later. The
// module is always importable under URI:
//
//	import "http://jslt.schibsted.com/2018/experimental" as exp
//	exp:group-by(.items, .category, .name)
package experimental

import (
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// URI is the name templates import the module by.
const URI = "http://jslt.schibsted.com/2018/experimental"

// Module returns the experimental module.
func Module() *functions.MapModule {
	return functions.NewModule(GroupBy())
}

// GroupBy returns the group-by macro: group-by(seq, key, value) evaluates
// key and value with each element of seq as input and returns one
// {"key", "values"} object per distinct key, in order of first appearance.
// Keys are distinct when their JSON text differs.
// It is a macro because key and value are evaluated per element.
func GroupBy() *evaluator.MacroDef {
	return evaluator.DefineMacro("group-by", 3, 3, groupBy)
}

func groupBy(s *evaluator.Scope, input value.Value, args []evaluator.Node) (value.Value, error) {
	seqv, err := evaluator.Eval(args[0], s, input)
	if err != nil {
		return nil, err
	}
	var seq value.Array
	switch x := seqv.(type) {
	case value.Array:
		seq = x
	case *value.Object:
		seq = value.ConvertObjectToArray(x)
	default:
		if value.IsNull(seqv) {
			return value.Null, nil
		}
		return nil, types.Errorf(types.ErrFunctionArgument, nil, "Can't group-by on %s", value.String(seqv))
	}

	type group struct {
		key    value.Value
		values value.Array
	}
	var groups []*group
	index := make(map[string]*group)

	for _, el := range seq {
		key, err := evaluator.Eval(args[1], s, el)
		if err != nil {
			return nil, err
		}
		v, err := evaluator.Eval(args[2], s, el)
		if err != nil {
			return nil, err
		}

		h := value.String(key)
		g, ok := index[h]
		if !ok {
			g = &group{key: key}
			groups = append(groups, g)
			index[h] = g
		}
		g.values = append(g.values, v)
	}

	out := make(value.Array, len(groups))
	for i, g := range groups {
		obj := value.NewObject(2)
		obj.Set("key", g.key)
		obj.Set("values", g.values)
		out[i] = obj
	}
	return out, nil
}
