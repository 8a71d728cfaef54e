package value

import (
	"bytes"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gojslt/pkg/types"
)

// ParseYAML decodes a single YAML document into a Value. Mapping key order is
// preserved. Timestamps and other non-JSON scalars become strings.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.Errorf(types.ErrSyntaxError, nil, "invalid YAML: %v", err).WithCause(err)
	}
	if doc.Kind == 0 {
		return Null, nil
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		out := make(Array, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		obj := NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, types.Errorf(types.ErrSyntaxError, nil, "invalid YAML: unsupported node at line %d", n.Line)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, types.Errorf(types.ErrSyntaxError, nil, "invalid YAML boolean %q", n.Value).WithCause(err)
		}
		return Boolean(b), nil
	case "!!int":
		if v, err := ParseNumberLiteral(n.Value); err == nil {
			return v, nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, types.Errorf(types.ErrSyntaxError, nil, "invalid YAML integer %q", n.Value).WithCause(err)
		}
		return NarrowLong(i), nil
	case "!!float":
		if v, err := ParseNumberLiteral(n.Value); err == nil {
			return v, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, types.Errorf(types.ErrSyntaxError, nil, "invalid YAML float %q", n.Value).WithCause(err)
		}
		return Double(f), nil
	}
	return Text(n.Value), nil
}

// ToYAML renders v as a YAML document.
func ToYAML(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(OrNull(v))); err != nil {
		return nil, types.Errorf(types.ErrTypeMismatch, nil, "can't render YAML: %v", err).WithCause(err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAML(v Value) *yaml.Node {
	scalar := func(tag, s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s}
	}
	switch x := v.(type) {
	case null:
		return scalar("!!null", "null")
	case Bool:
		return scalar("!!bool", strconv.FormatBool(bool(x)))
	case Text:
		return scalar("!!str", string(x))
	case Int, Long, BigInt:
		return scalar("!!int", String(x))
	case Double:
		f := float64(x)
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan")
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf")
		}
		return scalar("!!float", FormatDouble(f))
	case BigDecimal:
		return scalar("!!float", x.v.String())
	case Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range x {
			n.Content = append(n.Content, toYAML(OrNull(el)))
		}
		return n
	case *Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		x.Range(func(k string, el Value) bool {
			n.Content = append(n.Content, scalar("!!str", k), toYAML(el))
			return true
		})
		return n
	}
	return scalar("!!null", "null")
}
