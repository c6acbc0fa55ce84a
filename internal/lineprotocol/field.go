package lineprotocol

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// FieldKind identifies the wire type a field value resolved to.
type FieldKind int

// Field value kinds. A field resolves to exactly one kind; the kind is
// chosen once and is immutable thereafter.
const (
	FieldFloat FieldKind = iota
	FieldInteger
	FieldBoolean
	FieldString
)

// FieldValue is a field value classified into exactly one wire type.
// Only the member matching Kind is meaningful.
type FieldValue struct {
	Kind  FieldKind
	Float float64
	Int   int64
	Bool  bool
	Str   string
}

// FloatValue wraps a float64 as a field value.
func FloatValue(v float64) FieldValue { return FieldValue{Kind: FieldFloat, Float: v} }

// IntegerValue wraps an int64 as a field value.
func IntegerValue(v int64) FieldValue { return FieldValue{Kind: FieldInteger, Int: v} }

// BooleanValue wraps a bool as a field value.
func BooleanValue(v bool) FieldValue { return FieldValue{Kind: FieldBoolean, Bool: v} }

// StringValue wraps a string as a field value.
func StringValue(v string) FieldValue { return FieldValue{Kind: FieldString, Str: v} }

// integerSuffix matches string values carrying an explicit integer marker:
// an optional minus sign, digits, and a literal trailing 'i' (e.g. "42i",
// "-7i"). "42.5i" does not match and stays a plain string field.
var integerSuffix = regexp.MustCompile(`^-?[0-9]+i$`)

// resolveField classifies a raw field value into a FieldValue.
//
// Classification rules, in priority order:
//  1. nil is skipped silently — an absent value is not an error.
//  2. A string matching the integer suffix pattern parses as an integer.
//  3. A number becomes an integer when the field is integer-hinted
//     (truncating toward zero), otherwise a float. Non-finite numbers
//     are skipped.
//  4. A bool passes through.
//  5. Any other string passes through verbatim.
//  6. Anything else (nested map, list, ...) is skipped.
//
// Skips are warnings, never fatal: one bad field must not abort an
// otherwise-valid point. ok is false when the field must be dropped.
func (e *Encoder) resolveField(name string, raw any, hints map[string]bool) (fv FieldValue, ok bool) {
	if raw == nil {
		return FieldValue{}, false
	}

	if s, isString := raw.(string); isString {
		if !integerSuffix.MatchString(s) {
			return StringValue(s), true
		}
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			e.warn("integer field value out of range, dropping field",
				"field", name,
				"value", s,
			)
			return FieldValue{}, false
		}
		return IntegerValue(n), true
	}

	if f, isNumeric := toFloat64(raw); isNumeric {
		return e.resolveNumeric(name, f, hints)
	}

	if b, isBool := raw.(bool); isBool {
		return BooleanValue(b), true
	}

	e.warn("unsupported field value type, dropping field",
		"field", name,
		"type", fmt.Sprintf("%T", raw),
	)
	return FieldValue{}, false
}

// resolveNumeric applies the numeric typing rules. Plain numbers default
// to floats; integer typing is opt-in via the hint set. Integer-hinted
// values with a fractional part are truncated toward zero with a
// precision-loss warning rather than rejected.
func (e *Encoder) resolveNumeric(name string, f float64, hints map[string]bool) (FieldValue, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		e.warn("non-finite field value, dropping field",
			"field", name,
			"value", f,
		)
		return FieldValue{}, false
	}

	if !hints[name] {
		return FloatValue(f), true
	}

	truncated := math.Trunc(f)
	// MaxInt64 is not exactly representable as a float64; >= compares
	// against the next power of two, which is.
	if truncated < math.MinInt64 || truncated >= math.MaxInt64 {
		e.warn("integer-hinted field value out of range, dropping field",
			"field", name,
			"value", f,
		)
		return FieldValue{}, false
	}
	if truncated != f {
		e.warn("integer-hinted field value truncated",
			"field", name,
			"value", f,
			"stored", int64(truncated),
		)
	}
	return IntegerValue(int64(truncated)), true
}

// toFloat64 reports whether raw is numeric, converting it to float64.
// JSON decoding produces float64 for every number; the remaining cases
// cover programmatic callers passing native Go numerics.
func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
