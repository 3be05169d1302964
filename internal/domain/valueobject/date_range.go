// Package valueobject contains domain value objects for the MenuInzicht analytics backend.
package valueobject

import (
	"fmt"
	"time"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// DateRange is an inclusive pair of civil dates with Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a DateRange, normalizing both ends to local midnight.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = calendar.Normalize(start)
	end = calendar.Normalize(end)
	if end.Before(start) {
		return DateRange{}, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidDateRange,
			fmt.Sprintf("end date %s is before start date %s", calendar.FormatDate(end), calendar.FormatDate(start)),
			domainerror.ErrInvalidDateRange,
		)
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses two YYYY-MM-DD strings into a DateRange.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := calendar.ParseLocalDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := calendar.ParseLocalDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// Expand returns every calendar day of the range in increasing order, both ends included.
func (r DateRange) Expand() []time.Time {
	n := r.Days()
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, calendar.AddDays(r.Start, i))
	}
	return dates
}

// Days returns the inclusive length of the range in days.
func (r DateRange) Days() int {
	return calendar.DaysBetween(r.Start, r.End) + 1
}

// Contains reports whether the civil date of t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := calendar.Normalize(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// StartISO returns the start date as YYYY-MM-DD.
func (r DateRange) StartISO() string {
	return calendar.FormatDate(r.Start)
}

// EndISO returns the end date as YYYY-MM-DD.
func (r DateRange) EndISO() string {
	return calendar.FormatDate(r.End)
}

// String implements fmt.Stringer.
func (r DateRange) String() string {
	return r.StartISO() + ".." + r.EndISO()
}
