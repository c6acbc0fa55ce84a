package lineprotocol

import "errors"

// Sentinel errors for encode failures.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEmptyInput is returned when a textual payload is empty after
	// trimming surrounding whitespace.
	ErrEmptyInput = errors.New("lineprotocol: empty input")

	// ErrUnsupportedPayload is returned when a payload is neither text
	// nor a structured record (e.g. a list or a bare number).
	ErrUnsupportedPayload = errors.New("lineprotocol: unsupported payload shape")

	// ErrMissingMeasurement is returned when a structured record resolves
	// with no usable measurement name.
	ErrMissingMeasurement = errors.New("lineprotocol: no measurement name")

	// ErrNoValidFields is returned when a structured record resolves zero
	// usable fields. A point must carry at least one field — tags and a
	// timestamp alone do not identify a value.
	ErrNoValidFields = errors.New("lineprotocol: no valid fields")
)
