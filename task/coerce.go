package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the supported coercion strategies.
type Kind int

const (
	kindNone Kind = iota
	KindInt
	KindString
	KindFloat
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "str"
	case KindFloat:
		return "float"
	case KindCustom:
		return "custom"
	default:
		return "none"
	}
}

// Coercer converts one raw input token into a typed value. The zero value is
// not usable; build one with Int, String, Float or Custom.
type Coercer struct {
	kind  Kind
	label string
	fn    func(string) (any, error)
}

// Int parses base-10 integers.
func Int() Coercer { return Coercer{kind: KindInt, label: "int"} }

// String passes the raw token through unchanged.
func String() Coercer { return Coercer{kind: KindString, label: "str"} }

// Float parses 64-bit floating point numbers.
func Float() Coercer { return Coercer{kind: KindFloat, label: "float"} }

// Custom wraps a caller-supplied conversion. label appears in input error
// messages. A nil fn yields an invalid coercer.
func Custom(label string, fn func(string) (any, error)) Coercer {
	if fn == nil {
		return Coercer{}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = KindCustom.String()
	}
	return Coercer{kind: KindCustom, label: label, fn: fn}
}

// Kind reports the strategy.
func (c Coercer) Kind() Kind { return c.kind }

// Label is the human-readable target type.
func (c Coercer) Label() string { return c.label }

// IsZero reports whether the coercer was never initialised.
func (c Coercer) IsZero() bool { return c.kind == kindNone }

// Coerce converts raw. Failures, including a panicking custom converter,
// are returned as *InputError.
func (c Coercer) Coerce(raw string) (value any, err error) {
	switch c.kind {
	case KindInt:
		value, err = strconv.Atoi(strings.TrimSpace(raw))
	case KindFloat:
		value, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case KindString:
		value = raw
	case KindCustom:
		value, err = c.custom(raw)
	default:
		return nil, ErrInvalidArg
	}
	if err != nil {
		return nil, NewInputError("argument %q cannot be converted to %s", raw, c.label)
	}
	return value, nil
}

func (c Coercer) custom(raw string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("custom coercer panicked: %v", r)
		}
	}()
	return c.fn(raw)
}
