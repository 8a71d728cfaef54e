// Package value implements the JSON-like value model used by templates.
//
// A Value is one of Null, Bool, Text, Int, Long, BigInt, Double, BigDecimal,
// Array or *Object. The numeric variants form an exact tower:
//
//	Int ⊂ Long ⊂ BigInt        (integral)
//	Double, BigDecimal         (decimal)
//
// Arithmetic never silently truncates: the operators in this package promote
// to the wider representation actually present in their operands.
//
// Values are immutable once built. Arrays and objects may be shared freely
// between goroutines after construction.
package value

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBoolean
	KindText
	KindInt
	KindLong
	KindBigInt
	KindDouble
	KindBigDecimal
	KindArray
	KindObject
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindText:
		return "string"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindBigInt:
		return "bigint"
	case KindDouble:
		return "double"
	case KindBigDecimal:
		return "bigdecimal"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON-like value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	value()
}

type null struct{}

// Null is the single null value.
var Null Value = null{}

// Bool is a boolean value.
type Bool bool

// True and False are the two boolean values.
var (
	True  Value = Bool(true)
	False Value = Bool(false)
)

// Text is a string value.
type Text string

// Int is a 32-bit integral value.
type Int int32

// Long is a 64-bit integral value.
type Long int64

// BigInt is an arbitrary-precision integral value.
type BigInt struct {
	v *big.Int
}

// Double is a 64-bit floating point value.
type Double float64

// BigDecimal is an arbitrary-precision decimal value.
type BigDecimal struct {
	v decimal.Decimal
}

// Array is an ordered sequence of values.
type Array []Value

func (null) Kind() Kind       { return KindNull }
func (Bool) Kind() Kind       { return KindBoolean }
func (Text) Kind() Kind       { return KindText }
func (Int) Kind() Kind        { return KindInt }
func (Long) Kind() Kind       { return KindLong }
func (BigInt) Kind() Kind     { return KindBigInt }
func (Double) Kind() Kind     { return KindDouble }
func (BigDecimal) Kind() Kind { return KindBigDecimal }
func (Array) Kind() Kind      { return KindArray }

func (null) value()       {}
func (Bool) value()       {}
func (Text) value()       {}
func (Int) value()        {}
func (Long) value()       {}
func (BigInt) value()     {}
func (Double) value()     {}
func (BigDecimal) value() {}
func (Array) value()      {}

// Boolean returns True or False.
func Boolean(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewBigInt wraps b. The caller must not modify b afterwards.
func NewBigInt(b *big.Int) BigInt {
	return BigInt{v: b}
}

// Big returns the underlying integer. It must not be modified.
func (b BigInt) Big() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return b.v
}

// NewBigDecimal wraps d.
func NewBigDecimal(d decimal.Decimal) BigDecimal {
	return BigDecimal{v: d}
}

// Decimal returns the underlying decimal.
func (d BigDecimal) Decimal() decimal.Decimal {
	return d.v
}

// IsNull reports whether v is null. A nil interface counts as null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(null)
	return ok
}

// OrNull returns v, or Null when v is nil.
func OrNull(v Value) Value {
	if v == nil {
		return Null
	}
	return v
}

// IsNumber reports whether v is any numeric variant.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Int, Long, BigInt, Double, BigDecimal:
		return true
	}
	return false
}

// IsIntegral reports whether v is Int, Long or BigInt.
func IsIntegral(v Value) bool {
	switch v.(type) {
	case Int, Long, BigInt:
		return true
	}
	return false
}

// IsDecimal reports whether v is Double or BigDecimal.
func IsDecimal(v Value) bool {
	switch v.(type) {
	case Double, BigDecimal:
		return true
	}
	return false
}

// Size returns the number of elements of an array, keys of an object or
// characters of a string. Other values have size 0.
func Size(v Value) int {
	switch t := v.(type) {
	case Array:
		return len(t)
	case *Object:
		return t.Len()
	case Text:
		return len([]rune(string(t)))
	}
	return 0
}
