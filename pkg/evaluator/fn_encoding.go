package evaluator

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"github.com/sandrolain/gojslt/pkg/value"
)

func fnToJSON(_ value.Value, args []value.Value) (value.Value, error) {
	return value.Text(value.String(args[0])), nil
}

// fnFromJSON parses a string as JSON. Empty input yields null; on a parse
// failure the optional second argument is returned instead of an error.
func fnFromJSON(_ value.Value, args []value.Value) (value.Value, error) {
	s, ok := asNullableString(args[0])
	if !ok {
		return value.Null, nil
	}
	if strings.TrimSpace(s) == "" {
		return value.Null, nil
	}
	v, err := value.ParseJSONString(s)
	if err != nil {
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, argError("from-json can't parse %s: %v", s, err)
	}
	return v, nil
}

func fnSha256Hex(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	sum := sha256.Sum256([]byte(asString(args[0])))
	return value.Text(hex.EncodeToString(sum[:])), nil
}

// fnHashInt hashes the JSON form of a value, with object keys sorted, to a
// 32-bit integer.
func fnHashInt(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	h := xxhash.Sum64(appendCanonical(nil, args[0], false))
	return value.Int(int32(h ^ h>>32)), nil
}

// appendCanonical writes v as JSON with object keys in sorted order. With
// normalize set, numbers are written by numeric value so that 1, 1.0 and
// 1.00 produce the same text.
func appendCanonical(buf []byte, v value.Value, normalize bool) []byte {
	switch x := value.OrNull(v).(type) {
	case value.Array:
		buf = append(buf, '[')
		for i, el := range x {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendCanonical(buf, el, normalize)
		}
		return append(buf, ']')
	case *value.Object:
		keys := x.Keys()
		sort.Strings(keys)
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = value.AppendJSON(buf, value.Text(k))
			buf = append(buf, ':')
			buf = appendCanonical(buf, x.Field(k), normalize)
		}
		return append(buf, '}')
	case value.Int, value.Long, value.BigInt:
		if normalize {
			return value.AppendJSON(buf, x)
		}
	case value.Double:
		f := float64(x)
		if normalize && !math.IsNaN(f) && !math.IsInf(f, 0) {
			if f == math.Trunc(f) && math.Abs(f) < 1e18 {
				return strconv.AppendInt(buf, int64(f), 10)
			}
			return append(buf, decimal.NewFromFloat(f).String()...)
		}
	case value.BigDecimal:
		if normalize {
			return append(buf, x.Decimal().String()...)
		}
	}
	return value.AppendJSON(buf, v)
}
