// Package jsonvalue is a small JSON value tree with its own lexer, parser
// and writer, grounded on original_source's util/json module (JsonValue's
// object/array/number/string/boolean/null hierarchy and JsonNumberValue's
// int64-vs-float64 distinction). It exists so callers can build or walk a
// JSON document incrementally without round-tripping through
// encoding/json's struct-tag reflection.
package jsonvalue

import (
	"math"
	"strconv"
)

// Value is any JSON value: *Object, *Array, Number, String, Boolean or Null.
type Value interface {
	isValue()
}

// Null represents the JSON literal null.
type Null struct{}

func (Null) isValue() {}

// NewNull returns the JSON null value.
func NewNull() Value { return Null{} }

// Boolean represents a JSON true/false literal.
type Boolean bool

func (Boolean) isValue() {}

// NewBoolean wraps b as a Value.
func NewBoolean(b bool) Value { return Boolean(b) }

// String represents a JSON string value.
type String string

func (String) isValue() {}

// NewString wraps s as a Value.
func NewString(s string) Value { return String(s) }

// Number holds a JSON number as its decimal text, matching
// JsonNumberValue's fromLong/fromDouble/fromNumberLiteral split: it is
// constructed from either an int64 or a float64, and parsed back on demand
// so constructing it can never fail.
type Number string

func (Number) isValue() {}

// NewNumberFromInt64 formats n as an integer-literal Number.
func NewNumberFromInt64(n int64) Value {
	return Number(strconv.FormatInt(n, 10))
}

// NewNumberFromFloat64 formats f as a Number using its shortest exact
// decimal representation.
func NewNumberFromFloat64(f float64) Value {
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// Float64 parses the number's text. Text produced by this package's own
// constructors or by Parse always parses cleanly; the error return exists
// because Number's underlying representation is text, not because failure
// is expected.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int64 parses the number's text as a signed 64-bit integer, truncating
// any fractional part.
func (n Number) Int64() (int64, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// IsFinite reports whether v is a Number holding a finite value. Any other
// Value kind is vacuously finite; JSON has no way to encode NaN/Infinity,
// so a Number built from one must be rejected by the caller before Write.
func IsFinite(v Value) bool {
	n, ok := v.(Number)
	if !ok {
		return true
	}
	f, err := n.Float64()
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Object is an ordered string-keyed map. Insertion order is preserved so
// Write's output is stable across runs, which matters for tests that match
// on a serialized record's exact text.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: map[string]Value{}}
}

func (*Object) isValue() {}

// Set assigns key to v, appending key to the iteration order on first use
// and leaving the order unchanged on overwrite.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key, if any.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns a copy of the object's keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len reports the number of entries in the object.
func (o *Object) Len() int { return len(o.keys) }

// Array is an ordered list of Values.
type Array struct {
	Items []Value
}

// NewArray returns an empty Array.
func NewArray() *Array { return &Array{} }

func (*Array) isValue() {}
