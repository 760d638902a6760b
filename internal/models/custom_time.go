package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// FlexibleDate is a calendar date that unmarshals from "YYYY-MM-DD" or RFC3339
// and always marshals back as "YYYY-MM-DD".
type FlexibleDate struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexibleDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		f.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(DateLayout, s)
	if err == nil {
		f.Time = t
		return nil
	}

	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	y, m, d := t.Date()
	f.Time = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexibleDate) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Format(DateLayout))
}
