package shared

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is one day on the calendar. Analytics series are bucketed by day and
// the platform serializes the bucket as "2006-01-02"; full timestamps are
// accepted too and truncated to the day.
type Date struct {
	time.Time
}

// NewDate builds a Date for the given day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the day-only form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

// UnmarshalJSON parses "2006-01-02", falling back to RFC 3339.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("date %q: %w", s, err)
		}
		t = t.UTC().Truncate(24 * time.Hour)
	}
	d.Time = t
	return nil
}
