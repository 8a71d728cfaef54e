package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func evalArray(n *ArrayCons, s *Scope, input value.Value) (value.Value, error) {
	out := make(value.Array, len(n.Elements))
	for i, el := range n.Elements {
		v, err := Eval(el, s, input)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func filterOf(f ObjectFilter) ObjectFilter {
	if f == nil {
		return DefaultFilter
	}
	return f
}

func evalObject(n *ObjectCons, s *Scope, input value.Value) (value.Value, error) {
	if err := evalLets(s, input, n.Lets); err != nil {
		return nil, err
	}
	filter := filterOf(n.Filter)

	obj := value.NewObject(len(n.Pairs))
	for _, p := range n.Pairs {
		v, err := Eval(p.Value, s, input)
		if err != nil {
			return nil, err
		}
		if !filter.Accept(v) {
			continue
		}
		key, err := evalKey(p, s, input)
		if err != nil {
			return nil, err
		}
		if n.dynamic && obj.Has(key) {
			return nil, types.Errorf(types.ErrDuplicateDynamic, p.Loc, "Duplicate key '%s' in object", key)
		}
		obj.Set(key, v)
	}

	if n.Matcher != nil {
		if err := evalMatcher(n, s, input, obj, filter); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func evalKey(p *Pair, s *Scope, input value.Value) (string, error) {
	if key, ok := p.StaticKey(); ok {
		return key, nil
	}
	k, err := Eval(p.Key, s, input)
	if err != nil {
		return "", err
	}
	text, ok := k.(value.Text)
	if !ok {
		return "", types.Errorf(types.ErrNonStringKey, p.Loc, "Object key must be string, not %s", value.String(k))
	}
	return string(text), nil
}

// evalMatcher copies the fields of the matcher's context object that the
// template does not define itself, after the static pairs.
func evalMatcher(n *ObjectCons, s *Scope, input value.Value, obj *value.Object, filter ObjectFilter) error {
	m := n.Matcher
	ctx := input
	if m.Context != nil {
		var err error
		if ctx, err = Eval(m.Context, s, input); err != nil {
			return err
		}
	}
	source, ok := ctx.(*value.Object)
	if !ok {
		return nil
	}

	for _, key := range source.Keys() {
		if _, defined := n.keys[key]; defined {
			continue
		}
		v, err := Eval(m.Value, s, source.Field(key))
		if err != nil {
			return err
		}
		if filter.Accept(v) {
			obj.Set(key, v)
		}
	}
	return nil
}

func evalObjectFor(n *ObjectFor, s *Scope, input value.Value) (value.Value, error) {
	seqv, err := Eval(n.Seq, s, input)
	if err != nil {
		return nil, err
	}
	seq, ok, err := sequence(seqv, "Object comprehension", n.loc)
	if err != nil || !ok {
		return value.Null, err
	}
	filter := filterOf(n.Filter)

	obj := value.NewObject(len(seq))
	for _, el := range seq {
		if err := evalLets(s, el, n.Lets); err != nil {
			return nil, err
		}
		if n.Cond != nil {
			keep, err := Eval(n.Cond, s, el)
			if err != nil {
				return nil, err
			}
			if !value.IsTrue(keep) {
				continue
			}
		}

		v, err := Eval(n.Value, s, el)
		if err != nil {
			return nil, err
		}
		// the key is not needed when the value is dropped
		if !filter.Accept(v) {
			continue
		}
		k, err := Eval(n.Key, s, el)
		if err != nil {
			return nil, err
		}
		key, ok := k.(value.Text)
		if !ok {
			return nil, types.Errorf(types.ErrNonStringKey, n.loc,
				"Object comprehension must have string as key, not %s", value.String(k))
		}
		obj.Set(string(key), v)
	}
	return obj, nil
}
