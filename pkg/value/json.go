package value

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"

	"github.com/sandrolain/gojslt/pkg/types"
)

// ParseJSON decodes a single JSON document into a Value. Object key order is
// preserved and numbers are classified with ParseNumberLiteral.
func ParseJSON(data []byte) (Value, error) {
	raw, dt, offset, err := jsonparser.Get(data)
	if err != nil {
		return nil, jsonError(err)
	}
	if rest := bytes.TrimSpace(data[offset:]); len(rest) > 0 {
		return nil, types.Errorf(types.ErrSyntaxError, nil, "invalid JSON: unexpected data after value: %.20q", rest)
	}
	return decode(raw, dt)
}

// ParseJSONString is ParseJSON for string input.
func ParseJSONString(s string) (Value, error) {
	return ParseJSON([]byte(s))
}

func jsonError(err error) error {
	return types.Errorf(types.ErrSyntaxError, nil, "invalid JSON: %v", err).WithCause(err)
}

func decode(raw []byte, dt jsonparser.ValueType) (Value, error) {
	switch dt {
	case jsonparser.Null:
		return Null, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, jsonError(err)
		}
		return Boolean(b), nil
	case jsonparser.Number:
		return ParseNumberLiteral(string(raw))
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, jsonError(err)
		}
		return Text(s), nil
	case jsonparser.Array:
		out := Array{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(v []byte, vt jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = jsonError(err)
				return
			}
			el, derr := decode(v, vt)
			if derr != nil {
				inner = derr
				return
			}
			out = append(out, el)
		})
		if inner != nil {
			return nil, inner
		}
		if err != nil {
			return nil, jsonError(err)
		}
		return out, nil
	case jsonparser.Object:
		obj := NewObject(4)
		err := jsonparser.ObjectEach(raw, func(k, v []byte, vt jsonparser.ValueType, _ int) error {
			el, derr := decode(v, vt)
			if derr != nil {
				return derr
			}
			obj.Set(string(k), el)
			return nil
		})
		if err != nil {
			if te, ok := err.(*types.Error); ok {
				return nil, te
			}
			return nil, jsonError(err)
		}
		return obj, nil
	}
	return nil, types.NewError(types.ErrSyntaxError, "invalid JSON: unknown value type")
}

// String renders v as compact JSON.
func String(v Value) string {
	return string(AppendJSON(nil, v))
}

// MarshalJSON renders v as compact JSON.
func MarshalJSON(v Value) []byte {
	return AppendJSON(nil, v)
}

// AppendJSON appends the compact JSON form of v to buf.
func AppendJSON(buf []byte, v Value) []byte {
	switch x := OrNull(v).(type) {
	case null:
		return append(buf, "null"...)
	case Bool:
		return strconv.AppendBool(buf, bool(x))
	case Text:
		return appendQuoted(buf, string(x))
	case Int:
		return strconv.AppendInt(buf, int64(x), 10)
	case Long:
		return strconv.AppendInt(buf, int64(x), 10)
	case BigInt:
		return x.Big().Append(buf, 10)
	case Double:
		return append(buf, FormatDouble(float64(x))...)
	case BigDecimal:
		return append(buf, x.v.String()...)
	case Array:
		buf = append(buf, '[')
		for i, el := range x {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = AppendJSON(buf, el)
		}
		return append(buf, ']')
	case *Object:
		buf = append(buf, '{')
		for i, k := range x.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendQuoted(buf, k)
			buf = append(buf, ':')
			buf = AppendJSON(buf, x.values[k])
		}
		return append(buf, '}')
	}
	return buf
}

// MarshalIndent renders v as JSON with each nesting level indented by indent.
func MarshalIndent(v Value, indent string) []byte {
	var sb strings.Builder
	writeIndent(&sb, OrNull(v), indent, 0)
	return []byte(sb.String())
}

func writeIndent(sb *strings.Builder, v Value, indent string, depth int) {
	newline := func(d int) {
		sb.WriteByte('\n')
		for i := 0; i < d; i++ {
			sb.WriteString(indent)
		}
	}
	switch x := v.(type) {
	case Array:
		if len(x) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i, el := range x {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(depth + 1)
			writeIndent(sb, OrNull(el), indent, depth+1)
		}
		newline(depth)
		sb.WriteByte(']')
	case *Object:
		if x.Len() == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(depth + 1)
			sb.Write(appendQuoted(nil, k))
			sb.WriteString(": ")
			writeIndent(sb, x.values[k], indent, depth+1)
		}
		newline(depth)
		sb.WriteByte('}')
	default:
		sb.Write(AppendJSON(nil, x))
	}
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a JSON string literal.
func appendQuoted(buf []byte, s string) []byte {
	buf = append(buf, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' && c < utf8.RuneSelf {
			i++
			continue
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				buf = append(buf, s[start:i]...)
				buf = append(buf, `�`...)
				i += size
				start = i
				continue
			}
			i += size
			continue
		}
		buf = append(buf, s[start:i]...)
		switch c {
		case '"', '\\':
			buf = append(buf, '\\', c)
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		default:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		i++
		start = i
	}
	buf = append(buf, s[start:]...)
	return append(buf, '"')
}

func quoteString(s string) string {
	return string(appendQuoted(nil, s))
}
