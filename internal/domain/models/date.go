// internal/domain/models/date.go
package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Date is a timestamp decoded from the API, which sends plain dates
// ("2026-03-01"), full RFC 3339 timestamps, or null.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("models: date %s is not a string", b)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("models: unrecognised date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(time.RFC3339))), nil
}

// Day formats the date for tables ("Mar 1, 2026"), or "—" when unset.
func (d Date) Day() string {
	if d.IsZero() {
		return "—"
	}
	return d.Format("Jan 2, 2006")
}

// DayTime includes the time of day when one was sent.
func (d Date) DayTime() string {
	if d.IsZero() {
		return "—"
	}
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
		return d.Day()
	}
	return d.Format("Jan 2, 2006 3:04 PM")
}
