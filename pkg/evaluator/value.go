// Package evaluator implements the StarBird tree-walking interpreter.
package evaluator

import "strconv"

// Value is the interface for all StarBird runtime values.
// The sealed marker method restricts implementations to this package.
type Value interface {
	value() // sealed marker
}

// NullValue is the single null value.
type NullValue struct{}

func (NullValue) value() {}

// BoolValue is a boolean value.
type BoolValue struct {
	Value bool
}

func (BoolValue) value() {}

// NumberValue is a double-precision number. StarBird has no integer type.
type NumberValue struct {
	Value float64
}

func (NumberValue) value() {}

// StringValue is an immutable string.
type StringValue struct {
	Value string
}

func (StringValue) value() {}

// Null is the shared null value.
var Null Value = NullValue{}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return BoolValue{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return NumberValue{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return StringValue{Value: s}
}

// FromLiteral converts a literal carried by a token or a Literal node.
func FromLiteral(lit any) Value {
	switch v := lit.(type) {
	case bool:
		return NewBool(v)
	case float64:
		return NewNumber(v)
	case string:
		return NewString(v)
	}
	return Null
}

// Truthy returns the boolean interpretation of a value.
// null and false are falsy; everything else, including 0 and "", is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NullValue:
		return false
	case BoolValue:
		return val.Value
	default:
		return true
	}
}

// Equal reports whether a and b are equal. Values of different types are
// never equal, and comparing never fails.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil, NullValue:
		switch b.(type) {
		case nil, NullValue:
			return true
		}
		return false
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x.Value == y.Value
	case NumberValue:
		y, ok := b.(NumberValue)
		return ok && x.Value == y.Value
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x.Value == y.Value
	}
	return false
}

// Stringify renders a value the way print shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "null"
	case BoolValue:
		return strconv.FormatBool(val.Value)
	case NumberValue:
		return FormatNumber(val.Value)
	case StringValue:
		return val.Value
	}
	return "null"
}

// FormatNumber formats n without a trailing ".0" for integral values and
// with the shortest round-trip digits otherwise.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// TypeName returns the user-facing type name of a value.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, NullValue:
		return "null"
	case BoolValue:
		return "boolean"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	}
	return "unknown"
}
