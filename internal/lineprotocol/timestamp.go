package lineprotocol

import (
	"math"
	"time"
)

// resolveTimestamp picks the first usable timestamp from the candidates,
// in priority order. Unusable candidates (non-finite or non-positive
// numbers, unparsable instants) are skipped with a warning. When none
// resolve, the point is left unstamped and the server assigns receipt
// time on write.
func (e *Encoder) resolveTimestamp(candidates ...any) (time.Time, bool) {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if t, ok := timestampValue(c); ok {
			return t, true
		}
		e.warn("unusable timestamp candidate, falling through", "value", c)
	}
	return time.Time{}, false
}

// timestampValue interprets a single candidate: an absolute instant
// (time.Time or RFC 3339 text) or a finite positive number of epoch
// milliseconds. Millisecond sources are widened to nanosecond precision
// here so the encoder never rescales.
func timestampValue(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil || t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	default:
		ms, ok := toFloat64(raw)
		if !ok || math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
			return time.Time{}, false
		}
		ns := ms * float64(time.Millisecond)
		if ns >= math.MaxInt64 {
			return time.Time{}, false
		}
		return time.Unix(0, int64(ns)), true
	}
}
