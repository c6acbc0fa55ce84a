package lineprotocol

import (
	"strconv"
	"strings"
)

// Encode serialises the point as a single line of line protocol with no
// trailing newline:
//
//	measurement,tag1=val1,tag2=val2 field1=val1,field2=val2 timestamp_ns
//
// Tags and fields are emitted in the point's canonical order, so output
// for a given point is deterministic. Callers batch multiple points by
// joining lines with '\n'.
func (p *Point) Encode() string {
	var b strings.Builder

	b.WriteString(escapeMeasurement(p.Measurement))

	for _, tag := range p.Tags {
		b.WriteByte(',')
		b.WriteString(escapeKey(tag.Key))
		b.WriteByte('=')
		b.WriteString(escapeKey(tag.Value))
	}

	b.WriteByte(' ')
	for i, f := range p.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeKey(f.Key))
		b.WriteByte('=')
		b.WriteString(f.Value.encode())
	}

	if p.HasTime {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(p.Time.UnixNano(), 10))
	}

	return b.String()
}

// encode renders the field value in its wire form. Integers carry a
// trailing 'i'; floats use the shortest representation that round-trips
// to the same 64-bit value and never carry a suffix.
func (v FieldValue) encode() string {
	switch v.Kind {
	case FieldInteger:
		return strconv.FormatInt(v.Int, 10) + "i"
	case FieldBoolean:
		return strconv.FormatBool(v.Bool)
	case FieldString:
		return quoteFieldString(v.Str)
	default:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
}

// escapeMeasurement escapes special characters in measurement names.
// Comma and space delimit; equals signs are legal here and left alone.
// Newlines are stripped to prevent line protocol injection.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", `\ `)
	s = strings.ReplaceAll(s, ",", `\,`)
	return s
}

// escapeKey escapes tag keys, tag values and field keys, where comma,
// equals and space all delimit.
// Newlines are stripped to prevent line protocol injection.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", `\ `)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "=", `\=`)
	return s
}

// quoteFieldString wraps a string field value in double quotes, escaping
// embedded backslashes and quotes. Backslashes go first so the quote
// escapes are not doubled.
func quoteFieldString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
