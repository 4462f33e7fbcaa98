package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ValueType tags a cell value as numeric or textual.
type ValueType string

// Cell value types.
const (
	ValueTypeNumber ValueType = "number"
	ValueTypeText   ValueType = "text"
)

// Value errors.
var (
	ErrTypeMismatch = errors.New("value type mismatch")
)

// ParseValueType maps a configuration token to a ValueType. "number" and
// "num" select Number; any other token, including the empty string, selects
// Text, so schema files may abbreviate or omit the type field.
func ParseValueType(token string) ValueType {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "number", "num":
		return ValueTypeNumber
	default:
		return ValueTypeText
	}
}

// Value is a single typed cell: a signed integer or a text literal. Values
// are comparable with ==; two values are equal when both type and payload
// match.
type Value struct {
	Type   ValueType
	Number int64  // set when Type is Number
	Text   string // set when Type is Text
}

// NewNumber returns a numeric cell value.
func NewNumber(n int64) Value {
	return Value{Type: ValueTypeNumber, Number: n}
}

// NewText returns a textual cell value.
func NewText(s string) Value {
	return Value{Type: ValueTypeText, Text: s}
}

// ZeroValue returns the zero cell for a type: 0 for Number, "" for Text.
func ZeroValue(vt ValueType) Value {
	if vt == ValueTypeNumber {
		return NewNumber(0)
	}
	return NewText("")
}

// ParseValue parses raw text into a Value of the target type. Text targets
// always succeed and keep the text verbatim. Number targets return
// ErrTypeMismatch when the text is not a plain signed integer.
func ParseValue(text string, target ValueType) (Value, error) {
	if target == ValueTypeNumber {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, text)
		}
		return NewNumber(n), nil
	}
	return NewText(text), nil
}

// String returns the canonical textual form: the decimal digits for Number,
// the verbatim text for Text. ParseValue(v.String(), v.Type) round-trips.
func (v Value) String() string {
	if v.Type == ValueTypeNumber {
		return strconv.FormatInt(v.Number, 10)
	}
	return v.Text
}
