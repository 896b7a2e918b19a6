// Package evaluator implements the AgentLisp small-step machine.
package evaluator

import "strconv"

// Value is the interface for all AgentLisp runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// IntValue represents an integer value.
type IntValue struct {
	Value int64
}

func (IntValue) value() {}

// StrValue represents a string value.
type StrValue struct {
	Value string
}

func (StrValue) value() {}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return IntValue{Value: n}
}

// NewStr creates a string value.
func NewStr(s string) Value {
	return StrValue{Value: s}
}

// Truthy returns the boolean interpretation of a value.
// Integer zero and the empty string are falsy; everything else is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case IntValue:
		return val.Value != 0
	case StrValue:
		return val.Value != ""
	default:
		return false
	}
}

// Text returns the string form of a value, used as the payload of write,
// tell, and ask system calls.
func Text(v Value) string {
	switch val := v.(type) {
	case IntValue:
		return strconv.FormatInt(val.Value, 10)
	case StrValue:
		return val.Value
	default:
		return ""
	}
}

// ValueEqual reports structural equality of two values.
func ValueEqual(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.Value == bv.Value
	case StrValue:
		bv, ok := b.(StrValue)
		return ok && av.Value == bv.Value
	}
	return false
}
