package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// referenceHour anchors date-only values away from midnight so that DST and
// timezone drift cannot move a date across a day boundary.
const referenceHour = 12

// Interval is a closed range of calendar days. Both bounds are inclusive: a
// reservation ending on a day conflicts with one starting that same day.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval parses a YYYY-MM-DD pair into a normalized interval.
func NewInterval(startISO, endISO string) (Interval, error) {
	start, err := ParseDate(startISO)
	if err != nil {
		return Interval{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := ParseDate(endISO)
	if err != nil {
		return Interval{}, fmt.Errorf("end_date: %w", err)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseDate parses a YYYY-MM-DD string into a normalized calendar day.
func ParseDate(iso string) (time.Time, error) {
	t, err := time.Parse(DateLayout, iso)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return NormalizeDay(t), nil
}

// NormalizeDay snaps a timestamp to the reference hour of its UTC calendar day.
func NormalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), referenceHour, 0, 0, 0, time.UTC)
}

// Validate checks interval ordering and that the interval does not start
// before today. A single-day interval (start == end) is valid, and so is
// start == today.
func (iv Interval) Validate(today time.Time) error {
	if iv.End.Before(iv.Start) {
		return ErrInvalidInterval
	}
	if iv.Start.Before(NormalizeDay(today)) {
		return ErrIntervalInPast
	}
	return nil
}

// Overlaps reports whether two intervals share at least one calendar day.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !other.Start.After(iv.End)
}

// Contains reports whether the given day falls inside the interval.
func (iv Interval) Contains(day time.Time) bool {
	d := NormalizeDay(day)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Days returns the interval length in calendar days (inclusive).
func (iv Interval) Days() int {
	return int(iv.End.Sub(iv.Start).Hours()/24) + 1
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.Start.Format(DateLayout), iv.End.Format(DateLayout))
}
