package kernel

import (
	"fmt"
	"time"

	"orderflow/internal/pkg/errs"
)

const dateLayout = "2006-01-02"

// ErrDateIsNotConstructed is returned when validating a zero Date.
var ErrDateIsNotConstructed = errs.NewValueIsRequiredError("Date must be created via DateOf or ParseDate")

// Date is a calendar date in the business timezone. Shifts and roster entries are
// keyed by Date so that "today" is the same for every replica regardless of host TZ.
type Date struct {
	year  int
	month time.Month
	day   int
}

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errs.NewValueIsInvalidErrorWithCause("date", fmt.Errorf("%q: %w", s, err))
	}
	return DateOf(t, time.UTC), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Start returns midnight of the date in loc.
func (d Date) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// End returns midnight of the following day in loc (exclusive bound).
func (d Date) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc)
}

// At returns the instant on this date at the given clock time in loc.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, hour, minute, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	t := time.Date(d.year, d.month, d.day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t, time.UTC)
}

func (d Date) IsEqual(other Date) bool {
	return d == other
}

func (d Date) Validate() error {
	if d.year == 0 {
		return ErrDateIsNotConstructed
	}
	return nil
}
