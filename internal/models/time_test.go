package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestParseFlexTimeExportLayout verifies the "2006-01-02 15:04:05 -0700"
// layout used by health exports.
func TestParseFlexTimeExportLayout(t *testing.T) {
	got, err := ParseFlexTime("2024-02-06 14:30:00 -0800")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 2, 6, 14, 30, 0, 0, time.FixedZone("", -8*3600))
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestParseFlexTimeRFC3339 verifies GPX-style ISO timestamps.
func TestParseFlexTimeRFC3339(t *testing.T) {
	got, err := ParseFlexTime("2024-06-02T06:30:05.250Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Nanosecond() != 250_000_000 || got.Second() != 5 {
		t.Errorf("got %v, want 06:30:05.250", got)
	}
}

// TestParseFlexTimeInvalid verifies garbage is rejected rather than
// silently mapped to the zero time.
func TestParseFlexTimeInvalid(t *testing.T) {
	if _, err := ParseFlexTime("not-a-date"); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

// TestFlexTimeUnmarshalMillis verifies phone-health streams that encode
// timestamps as epoch milliseconds.
func TestFlexTimeUnmarshalMillis(t *testing.T) {
	var q HealthKitQuantity
	if err := json.Unmarshal([]byte(`{"timestamp": 1726300800000, "value": 141}`), &q); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	want := time.Date(2024, 9, 14, 8, 0, 0, 0, time.UTC)
	if !q.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", q.Timestamp.Time, want)
	}
	if q.Value != 141 {
		t.Errorf("value = %v, want 141", q.Value)
	}
}

// TestHealthKitRawUnmarshal verifies a stored raw_data document decodes
// with mixed timestamp encodings.
func TestHealthKitRawUnmarshal(t *testing.T) {
	doc := `{
		"locations": [{"latitude": 48.1, "longitude": 11.5, "timestamp": "2024-09-14T08:00:00Z"}],
		"series": {
			"heartRate": [{"timestamp": 1726300800000, "value": 120}],
			"energy": [{"timestamp": "2024-09-14T08:00:30Z", "value": 4.2}]
		}
	}`
	var raw HealthKitRaw
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(raw.Locations) != 1 || len(raw.Series.HeartRate) != 1 || len(raw.Series.Energy) != 1 {
		t.Fatalf("unexpected stream sizes: %+v", raw)
	}
	if raw.Series.Distance != nil {
		t.Errorf("distance = %v, want nil", raw.Series.Distance)
	}
}

// TestParseSource verifies request values map onto known sources only.
func TestParseSource(t *testing.T) {
	for _, s := range AllSources {
		if got, err := ParseSource(string(s)); err != nil || got != s {
			t.Errorf("ParseSource(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseSource("fitbit"); err == nil {
		t.Error("expected error for unknown source")
	}
}

// TestSeriesPointJSON verifies nil fields encode as null, which chart
// readers rely on to draw gaps.
func TestSeriesPointJSON(t *testing.T) {
	b, err := json.Marshal(SeriesPoint{TimeS: 12, HR: Int(140)})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"time_s":12,"distance_m":null,"hr":140,"speed_ms":null,"pace_min_km":null}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
