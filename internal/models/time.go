package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FlexTime accepts the timestamp encodings providers emit: epoch
// milliseconds as a JSON number, RFC 3339 strings, and the
// "2006-01-02 15:04:05 -0700" export format.
type FlexTime struct {
	time.Time
}

const ExportTimeLayout = "2006-01-02 15:04:05 -0700"

var flexLayouts = []string{
	time.RFC3339Nano,
	ExportTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("cannot parse timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Parse tries each known layout, then falls back to numeric epoch milliseconds.
func (t *FlexTime) Parse(s string) error {
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

// ParseFlexTime parses a provider timestamp string into a time.Time.
func ParseFlexTime(s string) (time.Time, error) {
	var t FlexTime
	if err := t.Parse(s); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}
