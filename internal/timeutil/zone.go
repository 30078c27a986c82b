package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Local is the business timezone. Defaults to Arabia Standard Time (UTC+3).
var Local *time.Location

func init() {
	var err error
	Local, err = time.LoadLocation("Asia/Riyadh")
	if err != nil {
		Local = time.FixedZone("AST", 3*60*60)
	}
}

// SetLocation switches the business timezone. Unknown names keep the current zone.
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	Local = loc
	return nil
}

// Now returns the current time in the business timezone
func Now() time.Time {
	return time.Now().In(Local)
}

// ParseDate accepts a calendar date (2006-01-02) or a full RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(DateLayout, value, Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t.In(Local), nil
}

// StartOfDay returns 00:00:00 of t's day in the business timezone
func StartOfDay(t time.Time) time.Time {
	l := t.In(Local)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Local)
}

// EndOfDay returns 23:59:59.999999999 of t's day in the business timezone
func EndOfDay(t time.Time) time.Time {
	l := t.In(Local)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, Local)
}

// StartOfYear returns Jan 1 00:00 of year in the business timezone
func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, Local)
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
	ReceiptLayout  = "02-Jan-2006"
)
