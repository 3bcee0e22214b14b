package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// Date is a calendar date with day granularity. Transactions, recurring
// runs and snapshots are dated to the day; time of day never matters to
// the engine. The zero value means "unset".
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized date. Out-of-range components roll over
// the way time.Date rolls them (Feb 30 becomes Mar 1 or 2).
func NewDate(year int, month time.Month, day int) Date {
	var d Date
	d.y, d.m, d.d = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return d
}

// Today returns the current date in local time.
func Today() Date {
	return NewDate(time.Now().Date())
}

// ParseDate parses a strict "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want %s: %w", s, DateFormat, err)
	}
	return NewDate(t.Date()), nil
}

func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.time().Format(DateFormat) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// AddDays returns d shifted by n days, which may be negative.
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// DaysBetween returns the whole-day difference to minus from, negative
// when to precedes from. Clock time and time zones play no part.
func DaysBetween(from, to Date) int {
	return int(to.time().Sub(from.time()) / (24 * time.Hour))
}

// MarshalJSON encodes the date as a "2006-01-02" string, or "" when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a strict "2006-01-02" string; "" means unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
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

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)

// DateRange is an inclusive range of dates. A zero From or To leaves
// that side unbounded.
type DateRange struct {
	From Date
	To   Date
}

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}
