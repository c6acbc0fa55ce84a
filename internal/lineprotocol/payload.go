package lineprotocol

import (
	"fmt"
	"strings"
	"sync"
)

// Logger is the optional sink for non-fatal resolution warnings.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// Options carries the per-call defaults for Encode.
type Options struct {
	// Measurement is an explicit per-message measurement override.
	// Takes priority over DefaultMeasurement.
	Measurement string

	// DefaultMeasurement is the configured fallback measurement used when
	// the message carries no explicit override.
	DefaultMeasurement string

	// IntegerFields lists field names to encode as integers when their
	// values arrive as plain numbers. Merged with the payload's own
	// "integers" section.
	IntegerFields []string

	// Time is a message-scoped timestamp fallback, consulted when the
	// payload carries no usable "timestamp" value. Accepts a time.Time or
	// a positive epoch-milliseconds number; nil means no fallback (the
	// server assigns receipt time).
	Time any
}

// Encoder converts payloads into line protocol records.
//
// A logger may be attached for field-level warnings; without one, dropped
// values are silent. Encode holds no per-message state, so one Encoder
// serves any number of concurrent callers.
type Encoder struct {
	logger   Logger
	loggerMu sync.RWMutex
}

// NewEncoder returns an Encoder with no logger attached.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// SetLogger sets the warning sink for non-fatal resolution problems.
func (e *Encoder) SetLogger(logger Logger) {
	e.loggerMu.Lock()
	e.logger = logger
	e.loggerMu.Unlock()
}

// warn delivers a warning to the logger if one is set.
func (e *Encoder) warn(msg string, args ...any) {
	e.loggerMu.RLock()
	logger := e.logger
	e.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Encode classifies the payload and produces one line protocol record.
//
// Textual payloads (string or []byte) are caller-supplied wire text:
// trimmed and passed through unmodified, without re-validating wire
// format correctness. Structured records (string-keyed maps) run the full
// resolution pipeline. Any other shape fails with ErrUnsupportedPayload.
//
// Encode is deterministic: the same payload and options always produce a
// byte-identical record. On error, no record is emitted.
func (e *Encoder) Encode(payload any, opts Options) (string, error) {
	switch p := payload.(type) {
	case string:
		return passthrough(p)
	case []byte:
		return passthrough(string(p))
	case map[string]any:
		point, err := e.buildPoint(p, opts)
		if err != nil {
			return "", err
		}
		return point.Encode(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
}

// passthrough validates caller-supplied wire text. Correctness of the
// line protocol itself is the caller's responsibility.
func passthrough(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	return trimmed, nil
}
