package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e12 ms is September 2001; 1e12 s is far beyond any realistic date.
const epochMillisThreshold = 1e12

// ValuePair is the two-counter payload that drives the chart.
// A zero UpdatedAt means the source did not report a timestamp.
type ValuePair struct {
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Total returns A + B.
func (p ValuePair) Total() float64 {
	return p.A + p.B
}

// ErrMissingField is returned when a or b is absent or null.
var ErrMissingField = errors.New("missing field")

type rawPair struct {
	A         *float64        `json:"a"`
	B         *float64        `json:"b"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
}

// ParseValuePair decodes a JSON ValuePair. Both a and b must be present and
// finite; updatedAt may be an RFC 3339 string, an epoch number (seconds or
// milliseconds) or a numeric string, and may be omitted.
func ParseValuePair(data []byte) (ValuePair, error) {
	var raw rawPair
	if err := json.Unmarshal(data, &raw); err != nil {
		return ValuePair{}, fmt.Errorf("decode value pair: %w", err)
	}
	if raw.A == nil {
		return ValuePair{}, fmt.Errorf("value pair: a: %w", ErrMissingField)
	}
	if raw.B == nil {
		return ValuePair{}, fmt.Errorf("value pair: b: %w", ErrMissingField)
	}
	if !Finite(*raw.A) || !Finite(*raw.B) {
		return ValuePair{}, fmt.Errorf("value pair: a and b must be finite")
	}

	ts, err := ParseTimestamp(raw.UpdatedAt)
	if err != nil {
		return ValuePair{}, fmt.Errorf("value pair: updatedAt: %w", err)
	}
	return ValuePair{A: *raw.A, B: *raw.B, UpdatedAt: ts}, nil
}

// ParseTimestamp parses a raw JSON timestamp value. Empty input and null
// yield the zero time.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		return ParseTimestampString(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return time.Time{}, fmt.Errorf("want string or number, got %s", raw)
	}
	return fromEpoch(n), nil
}

// ParseTimestampString accepts RFC 3339 (with or without fractional seconds),
// a bare date, or a numeric epoch string.
func ParseTimestampString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func fromEpoch(n float64) time.Time {
	if n >= epochMillisThreshold {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// Finite reports whether f is neither NaN nor an infinity.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
