package lineprotocol

import (
	"fmt"
	"time"
)

// Reserved structured-record keys. When a record has no explicit "fields"
// section, every other top-level key is treated as a field.
const (
	keyFields    = "fields"
	keyTags      = "tags"
	keyTimestamp = "timestamp"
	keyIntegers  = "integers"
)

// reservedKey reports whether a record key is reserved for sub-sections.
func reservedKey(k string) bool {
	return k == keyFields || k == keyTags || k == keyTimestamp || k == keyIntegers
}

// Field pairs a field key with its resolved value.
type Field struct {
	Key   string
	Value FieldValue
}

// Point is a validated data point ready for encoding.
//
// Invariant: Fields is never empty — a point with zero resolved fields is
// invalid and never reaches the encoder. Tags and Fields are in canonical
// (sorted) order. The point is built once per message and discarded after
// encoding.
type Point struct {
	Measurement string
	Tags        []Tag
	Fields      []Field
	Time        time.Time
	HasTime     bool
}

// buildPoint assembles a Point from a structured record.
//
// The measurement resolves from the explicit per-message override first,
// then the configured default; neither present fails with
// ErrMissingMeasurement. Fields come from the explicit "fields" section
// when present, otherwise from every non-reserved top-level key. A record
// that resolves zero fields fails with ErrNoValidFields — including the
// case where candidates existed but all failed resolution.
func (e *Encoder) buildPoint(record map[string]any, opts Options) (*Point, error) {
	measurement := opts.Measurement
	if measurement == "" {
		measurement = opts.DefaultMeasurement
	}
	if measurement == "" {
		return nil, ErrMissingMeasurement
	}

	p := &Point{Measurement: measurement}

	if rawTags, present := record[keyTags]; present {
		if tagMap, isMap := rawTags.(map[string]any); isMap {
			p.Tags = resolveTags(tagMap)
		} else {
			e.warn("tags section is not a map, ignoring",
				"type", fmt.Sprintf("%T", rawTags),
			)
		}
	}

	e.appendFields(p, record, e.integerHints(record, opts.IntegerFields))
	if len(p.Fields) == 0 {
		return nil, ErrNoValidFields
	}

	candidates := make([]any, 0, 2)
	if ts, present := record[keyTimestamp]; present {
		candidates = append(candidates, ts)
	}
	candidates = append(candidates, opts.Time)
	if t, ok := e.resolveTimestamp(candidates...); ok {
		p.Time = t
		p.HasTime = true
	}

	return p, nil
}

// appendFields resolves the record's field candidates onto the point in
// sorted key order.
func (e *Encoder) appendFields(p *Point, record map[string]any, hints map[string]bool) {
	if rawFields, present := record[keyFields]; present {
		fieldMap, isMap := rawFields.(map[string]any)
		if !isMap {
			e.warn("fields section is not a map, ignoring",
				"type", fmt.Sprintf("%T", rawFields),
			)
			return
		}
		e.resolveInto(p, fieldMap, hints, false)
		return
	}
	e.resolveInto(p, record, hints, true)
}

// resolveInto resolves each candidate key/value pair and appends the
// survivors. skipReserved is set when iterating bare top-level keys.
func (e *Encoder) resolveInto(p *Point, candidates map[string]any, hints map[string]bool, skipReserved bool) {
	for _, k := range sortedKeys(candidates) {
		if skipReserved && reservedKey(k) {
			continue
		}
		if k == "" {
			e.warn("empty field name, dropping field")
			continue
		}
		if fv, ok := e.resolveField(k, candidates[k], hints); ok {
			p.Fields = append(p.Fields, Field{Key: k, Value: fv})
		}
	}
}

// integerHints merges the caller-supplied hint names with the payload's
// inline "integers" section. Hints apply only to numeric values without
// an explicit suffix marker.
func (e *Encoder) integerHints(record map[string]any, defaults []string) map[string]bool {
	hints := make(map[string]bool, len(defaults))
	for _, name := range defaults {
		hints[name] = true
	}

	raw, present := record[keyIntegers]
	if !present {
		return hints
	}

	switch list := raw.(type) {
	case []any:
		for _, item := range list {
			if name, isString := item.(string); isString {
				hints[name] = true
			} else {
				e.warn("non-string integer hint, ignoring", "value", item)
			}
		}
	case []string:
		for _, name := range list {
			hints[name] = true
		}
	default:
		e.warn("integers section is not a list, ignoring",
			"type", fmt.Sprintf("%T", raw),
		)
	}
	return hints
}
