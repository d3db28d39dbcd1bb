package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the wire format of every timestamp (yyyy-MM-dd HH:mm:ss).
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime renders in server-local time using DateTimeLayout and parses
// either that layout or RFC 3339.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// NewDateTimePtr returns nil for a nil time.
func NewDateTimePtr(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	dt := NewDateTime(*t)
	return &dt
}

// ParseDateTime accepts DateTimeLayout (interpreted in the local zone) or RFC 3339.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.ParseInLocation(DateTimeLayout, value, time.Local); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %q", value, "yyyy-MM-dd HH:mm:ss")
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Local().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}
