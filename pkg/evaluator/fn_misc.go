package evaluator

import (
	"encoding/binary"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/gojslt/pkg/value"
)

// fnUUID returns a random version 4 UUID without arguments. With two
// numbers it builds a deterministic UUID from them, and with two nulls the
// nil UUID.
func fnUUID(_ value.Value, args []value.Value) (value.Value, error) {
	switch len(args) {
	case 0:
		return value.Text(uuid.NewString()), nil
	case 2:
		if value.IsNull(args[0]) && value.IsNull(args[1]) {
			return value.Text(uuid.Nil.String()), nil
		}
		msb, lsb := longValue(args[0]), longValue(args[1])
		var id uuid.UUID
		binary.BigEndian.PutUint64(id[:8], uint64(maskMSB(msb)))
		binary.BigEndian.PutUint64(id[8:], uint64(maskLSB(lsb)))
		return value.Text(id.String()), nil
	}
	return nil, argError("Build-in UUID function must be called with either none or two parameters.")
}

// maskMSB sets the version nibble to 1, shifting the low 16 bits down.
func maskMSB(n int64) int64 {
	return (n &^ 0xFFFF) + (1 << 12) + ((n & 0xFFFF) >> 4)
}

// maskLSB sets the IETF variant bits.
func maskLSB(n int64) int64 {
	return int64(uint64(n&0x3FFFFFFFFFFFFFFF) + 0x8000000000000000)
}

// longValue truncates a number to int64. Non-numbers count as zero.
func longValue(v value.Value) int64 {
	if n, ok := value.ToInt64(v); ok {
		return n
	}
	if b, ok := v.(value.BigInt); ok {
		return int64(b.Big().Uint64())
	}
	f, _ := value.ToFloat(v)
	return saturate(f)
}

// fnParseURL splits a URL into its components. Query parameters map each
// name to the list of its values; a parameter without a value adds null.
func fnParseURL(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	raw := asString(args[0])
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return nil, argError("Can't parse %s", raw)
	}

	out := value.NewObject(8)
	if host := u.Hostname(); host != "" {
		out.Set("host", value.Text(host))
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, argError("Can't parse %s", raw)
		}
		out.Set("port", value.Int(port))
	}
	if u.EscapedPath() != "" {
		out.Set("path", value.Text(u.EscapedPath()))
	}
	out.Set("scheme", value.Text(u.Scheme))
	if u.RawQuery != "" {
		out.Set("query", value.Text(u.RawQuery))
		params := value.NewObject(0)
		for _, pair := range strings.Split(u.RawQuery, "&") {
			key, val := pair, value.Value(value.Null)
			if idx := strings.IndexByte(pair, '='); idx > 0 {
				key = unescape(pair[:idx])
				if idx+1 < len(pair) {
					val = value.Text(unescape(pair[idx+1:]))
				}
			}
			list, _ := params.Field(key).(value.Array)
			params.Set(key, append(list, val))
		}
		out.Set("parameters", params)
	}
	if u.Fragment != "" || strings.HasSuffix(raw, "#") {
		out.Set("fragment", value.Text(u.EscapedFragment()))
	}
	if u.User != nil && u.User.String() != "" {
		out.Set("userinfo", value.Text(u.User.String()))
	}
	return out, nil
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}
