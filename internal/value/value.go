// Package value defines the tagged value model used across the engine: a
// value is exactly one of Number (float64), String, or Bool, and every read
// must check the tag. There are no implicit conversions; converting between
// types is the job of explicit node types.
package value

import (
	"fmt"
	"strconv"
)

// Type is the tag carried by every Value.
type Type int

const (
	Number Type = iota
	String
	Bool
)

// String returns the wire name of the type tag, as used in signature
// serialization and plan documents.
func (t Type) String() string {
	switch t {
	case Number:
		return "number"
	case String:
		return "string"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// Value is a tagged union over the three primitive types. The zero Value is
// the number 0.
type Value struct {
	typ Type
	num float64
	str string
	b   bool
}

// Num constructs a Number value.
func Num(v float64) Value {
	return Value{typ: Number, num: v}
}

// Str constructs a String value.
func Str(s string) Value {
	return Value{typ: String, str: s}
}

// Boolean constructs a Bool value.
func Boolean(v bool) Value {
	return Value{typ: Bool, b: v}
}

// Zero returns the type-appropriate zero value: number 0, empty string, or
// false. Input slots are pre-seeded with these before a run.
func Zero(t Type) Value {
	switch t {
	case String:
		return Str("")
	case Bool:
		return Boolean(false)
	default:
		return Num(0)
	}
}

// Type returns the value's tag.
func (v Value) Type() Type {
	return v.typ
}

// AsNumber returns the numeric payload, or an error if the tag is not Number.
func (v Value) AsNumber() (float64, error) {
	if v.typ != Number {
		return 0, fmt.Errorf("value is %s, not number", v.typ)
	}
	return v.num, nil
}

// AsString returns the string payload, or an error if the tag is not String.
func (v Value) AsString() (string, error) {
	if v.typ != String {
		return "", fmt.Errorf("value is %s, not string", v.typ)
	}
	return v.str, nil
}

// AsBool returns the boolean payload, or an error if the tag is not Bool.
func (v Value) AsBool() (bool, error) {
	if v.typ != Bool {
		return false, fmt.Errorf("value is %s, not bool", v.typ)
	}
	return v.b, nil
}

// Interface returns the payload as a plain Go value (float64, string, or
// bool), for JSON encoding at the boundary.
func (v Value) Interface() any {
	switch v.typ {
	case String:
		return v.str
	case Bool:
		return v.b
	default:
		return v.num
	}
}

// FormatNumber renders f as the shortest decimal string that round-trips
// back to the same float64.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
