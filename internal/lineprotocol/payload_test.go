package lineprotocol_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/nerrad567/metric-relay/internal/lineprotocol"
)

// warnCounter counts warnings delivered by the encoder.
type warnCounter struct {
	count int
}

func (l *warnCounter) Warn(_ string, _ ...any) { l.count++ }

// =============================================================================
// Payload Classification Tests
// =============================================================================

func TestEncode_RawTextPassthrough(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	got, err := enc.Encode("  weather,location=lab temperature=18.5  ", lineprotocol.Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if want := "weather,location=lab temperature=18.5"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_RawBytesPassthrough(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	got, err := enc.Encode([]byte("m v=1\n"), lineprotocol.Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "m v=1" {
		t.Errorf("Encode() = %q, want %q", got, "m v=1")
	}
}

func TestEncode_EmptyText(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	for _, raw := range []string{"", "   ", "\n\t "} {
		if _, err := enc.Encode(raw, lineprotocol.Options{}); !errors.Is(err, lineprotocol.ErrEmptyInput) {
			t.Errorf("Encode(%q) error = %v, want ErrEmptyInput", raw, err)
		}
	}
}

func TestEncode_UnsupportedShapes(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	shapes := []any{
		nil,
		42.0,
		true,
		[]any{map[string]any{"v": 1.0}},
		[]string{"a", "b"},
	}
	for _, payload := range shapes {
		if _, err := enc.Encode(payload, lineprotocol.Options{}); !errors.Is(err, lineprotocol.ErrUnsupportedPayload) {
			t.Errorf("Encode(%T) error = %v, want ErrUnsupportedPayload", payload, err)
		}
	}
}

// =============================================================================
// Structured Record Tests
// =============================================================================

func TestEncode_FullScenario(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	payload := map[string]any{
		"fields":    map[string]any{"temperature": 21.5, "count": 5.0},
		"tags":      map[string]any{"location": "lab"},
		"integers":  []any{"count"},
		"timestamp": float64(1700000000000),
	}

	got, err := enc.Encode(payload, lineprotocol.Options{DefaultMeasurement: "cpu"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// 1700000000000 ms widened to nanoseconds; fields in sorted order.
	want := "cpu,location=lab count=5i,temperature=21.5 1700000000000000000"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_BareTopLevelFields(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	// No explicit fields section: every non-reserved key is a field.
	payload := map[string]any{
		"temperature": 21.5,
		"state":       "heating",
		"tags":        map[string]any{"room": "lab"},
		"integers":    []any{},
	}

	got, err := enc.Encode(payload, lineprotocol.Options{DefaultMeasurement: "climate"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `climate,room=lab state="heating",temperature=21.5`
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_MeasurementOverridePriority(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	payload := map[string]any{"v": 1.0}

	got, err := enc.Encode(payload, lineprotocol.Options{
		Measurement:        "override",
		DefaultMeasurement: "fallback",
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "override v=1" {
		t.Errorf("Encode() = %q, want measurement override to win", got)
	}
}

func TestEncode_MissingMeasurement(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	_, err := enc.Encode(map[string]any{"v": 1.0}, lineprotocol.Options{})
	if !errors.Is(err, lineprotocol.ErrMissingMeasurement) {
		t.Errorf("Encode() error = %v, want ErrMissingMeasurement", err)
	}
}

func TestEncode_NoValidFields(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	opts := lineprotocol.Options{DefaultMeasurement: "cpu"}

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"empty record", map[string]any{}},
		{"empty fields section despite tags", map[string]any{
			"fields": map[string]any{},
			"tags":   map[string]any{"location": "lab"},
		}},
		{"only reserved keys", map[string]any{
			"tags":      map[string]any{"location": "lab"},
			"timestamp": float64(1700000000000),
		}},
		{"all candidates fail resolution", map[string]any{
			"fields": map[string]any{"bad": []any{1.0}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Encode(tt.payload, opts); !errors.Is(err, lineprotocol.ErrNoValidFields) {
				t.Errorf("Encode() error = %v, want ErrNoValidFields", err)
			}
		})
	}
}

func TestEncode_IntegerHintFromOptions(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	payload := map[string]any{"count": 5.0}

	plain, err := enc.Encode(payload, lineprotocol.Options{DefaultMeasurement: "m"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if plain != "m count=5" {
		t.Errorf("unhinted Encode() = %q, want float rendering", plain)
	}

	hinted, err := enc.Encode(payload, lineprotocol.Options{
		DefaultMeasurement: "m",
		IntegerFields:      []string{"count"},
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if hinted != "m count=5i" {
		t.Errorf("hinted Encode() = %q, want integer rendering", hinted)
	}
}

func TestEncode_DroppedFieldSurvivors(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	logger := &warnCounter{}
	enc.SetLogger(logger)

	payload := map[string]any{
		"fields": map[string]any{
			"good":   1.5,
			"nested": map[string]any{"x": 1.0},
			"gone":   nil,
		},
	}

	got, err := enc.Encode(payload, lineprotocol.Options{DefaultMeasurement: "m"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "m good=1.5" {
		t.Errorf("Encode() = %q, want only the surviving field", got)
	}
	if logger.count == 0 {
		t.Error("dropped field produced no warning")
	}
}

func TestEncode_NullTagDropped(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	payload := map[string]any{
		"v":    1.0,
		"tags": map[string]any{"host": "core-01", "rack": nil, "slot": 3.0},
	}

	got, err := enc.Encode(payload, lineprotocol.Options{DefaultMeasurement: "m"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "m,host=core-01,slot=3 v=1" {
		t.Errorf("Encode() = %q, want null tag dropped and number coerced", got)
	}
}

func TestEncode_MessageTimeFallback(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	fallback := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

	got, err := enc.Encode(map[string]any{"v": 1.0}, lineprotocol.Options{
		DefaultMeasurement: "m",
		Time:               fallback,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "m v=1 " + strconv.FormatInt(fallback.UnixNano(), 10)
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_NoTimestampStaysUnset(t *testing.T) {
	enc := lineprotocol.NewEncoder()

	got, err := enc.Encode(map[string]any{"v": 1.0}, lineprotocol.Options{DefaultMeasurement: "m"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "m v=1" {
		t.Errorf("Encode() = %q, want no timestamp section", got)
	}
}

// TestEncode_Idempotent verifies two encodes of the same payload and
// options yield byte-identical output.
func TestEncode_Idempotent(t *testing.T) {
	enc := lineprotocol.NewEncoder()
	payload := map[string]any{
		"fields":    map[string]any{"a": 1.0, "b": "two", "c": true, "d": "42i"},
		"tags":      map[string]any{"x": "1", "y": "2", "z": "3"},
		"timestamp": float64(1700000000000),
	}
	opts := lineprotocol.Options{DefaultMeasurement: "m", IntegerFields: []string{"a"}}

	first, err := enc.Encode(payload, opts)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := enc.Encode(payload, opts)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if again != first {
			t.Fatalf("Encode() = %q on repeat, want %q", again, first)
		}
	}
}
