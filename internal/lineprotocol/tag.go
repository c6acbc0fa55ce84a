package lineprotocol

import (
	"fmt"
	"sort"
	"strconv"
)

// Tag is a single key/value dimension on a point. Both sides are
// non-empty text after coercion.
type Tag struct {
	Key   string
	Value string
}

// resolveTags coerces a raw tag map into ordered tags.
//
// Non-nil values are coerced to their canonical text form; nil values are
// dropped silently — a tag either exists with a value or does not exist.
// Pairs that are empty after coercion are dropped too. Keys are sorted so
// output is canonical regardless of map iteration order.
func resolveTags(raw map[string]any) []Tag {
	if len(raw) == 0 {
		return nil
	}

	tags := make([]Tag, 0, len(raw))
	for _, k := range sortedKeys(raw) {
		v, ok := coerceTagValue(raw[k])
		if !ok || k == "" || v == "" {
			continue
		}
		tags = append(tags, Tag{Key: k, Value: v})
	}
	return tags
}

// coerceTagValue converts a tag value to text: strings pass through,
// numbers and booleans are stringified, nil means "no tag".
func coerceTagValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	default:
		if f, ok := toFloat64(raw); ok {
			return strconv.FormatFloat(f, 'g', -1, 64), true
		}
		return fmt.Sprintf("%v", v), true
	}
}

// sortedKeys returns the map's keys in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
