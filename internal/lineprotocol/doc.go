// Package lineprotocol converts loosely-typed message payloads into
// InfluxDB line protocol records.
//
// A payload is either raw wire text (trimmed and passed through) or a
// structured record: a string-keyed map with optional "fields", "tags",
// "timestamp" and "integers" sections. Structured records run through a
// resolution pipeline — field values are classified into exactly one wire
// type, tag values are coerced to text, the timestamp is normalised — and
// the resulting point is serialised as a single line.
//
// # Usage
//
//	enc := lineprotocol.NewEncoder()
//	enc.SetLogger(logger)
//
//	record, err := enc.Encode(payload, lineprotocol.Options{
//	    DefaultMeasurement: "sensors",
//	    IntegerFields:      []string{"count"},
//	})
//
// # Field typing
//
// Plain numbers default to floats: a decoded numeric literal cannot
// distinguish 1 from 1.0, so integer typing is opt-in per field. A field
// becomes an integer either through an explicit "42i" suffix on a string
// value or by naming the field in Options.IntegerFields / the payload's
// "integers" list.
//
// # Error handling
//
// Problems with individual fields, tags or timestamp candidates are
// warnings delivered to the optional logger; the offending value is
// dropped and the rest of the point survives. Only structural problems
// (empty input, unsupported payload shape, no measurement, zero resolved
// fields) fail the whole encode, as sentinel errors checked with
// errors.Is. A failed encode never emits a partial record.
//
// # Thread Safety
//
// Encode is a pure transformation with no shared mutable state; an
// Encoder is safe for concurrent use from multiple goroutines.
package lineprotocol
