package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ISODateLayout is the canonical wire format of a Date
	ISODateLayout = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// Accepted input layouts, tried in order
var dateLayouts = []string{ISODateLayout, "02-01-2006", "02/01/2006"}

// ErrInvalidDate is returned when a string cannot be parsed as a calendar date
var ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD, DD-MM-YYYY or DD/MM/YYYY")

// Date is a calendar day without time of day or zone.
// It is persisted as the number of days since 1970-01-01.
type Date struct {
	t time.Time
}

// NewDate creates a Date from year, month and day
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current local calendar day
func Today() Date {
	return DateOf(time.Now())
}

// FromDayNumber converts a day count since 1970-01-01 into a Date
func FromDayNumber(n int64) Date {
	return Date{t: time.Unix(n*secondsPerDay, 0).UTC()}
}

// ParseDate parses s in any of the accepted layouts
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DayNumber returns the number of days since 1970-01-01
func (d Date) DayNumber() int64 {
	return d.t.Unix() / secondsPerDay
}

// IsZero reports whether the date was never set
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return d.t
}

// Year returns the calendar year
func (d Date) Year() int {
	return d.t.Year()
}

// Month returns the calendar month
func (d Date) Month() time.Month {
	return d.t.Month()
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether both values name the same day
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// AddDays returns the date n days later (earlier for negative n)
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysSince returns the whole days elapsed from other to d
func (d Date) DaysSince(other Date) int {
	return int(d.DayNumber() - other.DayNumber())
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(ISODateLayout)
}

// Format formats the date with a time layout
func (d Date) Format(layout string) string {
	return d.t.Format(layout)
}

// Compact formats the date as YYYYMMDD
func (d Date) Compact() string {
	return d.t.Format("20060102")
}

// DDMMYYYY formats the date as DDMMYYYY, the form used inside traceable codes
func (d Date) DDMMYYYY() string {
	return d.t.Format("02012006")
}

// FinancialYear returns the April-March financial year containing d, e.g. "2025-26"
func (d Date) FinancialYear() string {
	start := d.t.Year()
	if d.t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// MarshalJSON encodes the date as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any of the supported layouts
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalParam lets gin bind query and form parameters into a Date
func (d *Date) UnmarshalParam(param string) error {
	if strings.TrimSpace(param) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(param)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// OrNil returns a pointer to d, or nil for the zero Date
func (d Date) OrNil() *Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

// Value implements driver.Valuer, storing the day number
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.DayNumber(), nil
}

// Scan implements sql.Scanner for day-number columns
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case int64:
		*d = FromDayNumber(v)
	case int32:
		*d = FromDayNumber(int64(v))
	case int:
		*d = FromDayNumber(int64(v))
	case float64:
		*d = FromDayNumber(int64(v))
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil {
		return fmt.Errorf("cannot scan %q into Date: %w", s, err)
	}
	*d = FromDayNumber(n)
	return nil
}
