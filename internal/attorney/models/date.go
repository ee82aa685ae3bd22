package models

import (
	"time"

	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
)

// DateLayout is the wire and storage layout for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date kept in its YYYY-MM-DD form so it serializes the same
// way to JSON, BSON and Redis.
type Date string

// ParseDate validates s and returns it as a Date. Empty input yields "".
func ParseDate(s string) (Date, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "dates must use the YYYY-MM-DD format")
	}
	return Date(s), nil
}

// DateFromTime truncates t to its calendar date.
func DateFromTime(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time parses the date at UTC midnight.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

func (d Date) IsZero() bool {
	return d == ""
}

func (d *Date) clone() *Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
