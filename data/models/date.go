package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// acceptedDateLayouts are tried in order when decoding a Date from JSON. Forms
// submit plain dates; other clients echo back RFC3339 timestamps.
var acceptedDateLayouts = []string{dateLayout, "2006-01-02T15:04", time.RFC3339}

// Date is a calendar day stored in a DATE column and exchanged as YYYY-MM-DD.
// The zero Date is written as NULL and marshalled as null.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Date{time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
	case string:
		return d.UnmarshalJSON([]byte(`"` + v + `"`))
	case []byte:
		return d.UnmarshalJSON([]byte(`"` + string(v) + `"`))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Before reports whether d falls on an earlier day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}
