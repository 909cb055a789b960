// Package caldate provides a calendar date value with day granularity.
package caldate

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the canonical text form of a Date. It sorts lexicographically.
const Layout = "2006-01-02"

// readLayout accepts single-digit month and day on input.
const readLayout = "2006-1-2"

// Date is a calendar day without time of day or zone.
// The zero value reports IsZero and is used as "not specified".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date. Out-of-range days roll over like time.Date.
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{t.Year(), t.Month(), t.Day()}
}

// Parse parses "YYYY-MM-DD" (single-digit month/day allowed).
func Parse(s string) (Date, error) {
	t, err := time.Parse(readLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Layout, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// FromTime returns the calendar day t falls on in loc.
func FromTime(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return New(t.In(loc).Date())
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date { return FromTime(time.Now(), loc) }

func (d Date) utc() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// StartIn returns midnight of d in loc.
func (d Date) StartIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) Before(x Date) bool { return d.utc().Before(x.utc()) }
func (d Date) After(x Date) bool  { return d.utc().After(x.utc()) }
func (d Date) Equal(x Date) bool  { return d == x }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// DaysUntil returns the number of days from d to x (negative if x is earlier).
func (d Date) DaysUntil(x Date) int {
	return int(x.utc().Sub(d.utc()).Hours() / 24)
}

// Compact formats d as YYYYMMDD.
func (d Date) Compact() string { return d.utc().Format("20060102") }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.utc().Format(Layout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
