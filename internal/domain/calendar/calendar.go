// Package calendar provides civil-date arithmetic used by the analytics engine.
//
// All dates are civil dates: a year, a month and a day anchored at midnight in
// time.Local. Nothing here converts through UTC, so a date string always maps to
// the same calendar day regardless of the host timezone.
package calendar

import (
	"strconv"
	"time"

	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// DateLayout is the ISO calendar date layout used for keys and API parameters.
const DateLayout = "2006-01-02"

// Weekdays lists weekday names in Monday-first order.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// sakamotoOffsets are the month offsets of Sakamoto's day-of-week algorithm.
var sakamotoOffsets = [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}

// ParseLocalDate parses a YYYY-MM-DD string into a date at local midnight.
// A trailing time part (e.g. "2025-09-02T10:00:00") is ignored.
func ParseLocalDate(iso string) (time.Time, error) {
	year, month, day, err := splitISO(iso)
	if err != nil {
		return time.Time{}, err
	}
	return Date(year, time.Month(month), day), nil
}

// MustParseLocalDate is like ParseLocalDate but panics on malformed input.
// It is intended for fixtures and constants.
func MustParseLocalDate(iso string) time.Time {
	t, err := ParseLocalDate(iso)
	if err != nil {
		panic(err)
	}
	return t
}

// Date builds a civil date at local midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// Normalize drops the time-of-day of t, keeping its civil date.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays moves a civil date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Date(t.Year(), t.Month(), t.Day()+n)
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DayNumber returns the number of days since 1970-01-01 for the civil date of t.
func DayNumber(t time.Time) int {
	return DaysBetween(Date(1970, time.January, 1), t)
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// DayOfYear returns the 1-based ordinal day of t within its year.
func DayOfYear(t time.Time) int {
	return DaysBetween(Date(t.Year(), time.January, 1), t) + 1
}

// WeekdayMondayFirst returns 0 (Monday) .. 6 (Sunday) for an ISO date string.
// It uses Sakamoto's algorithm on the string components only.
func WeekdayMondayFirst(iso string) (int, error) {
	year, month, day, err := splitISO(iso)
	if err != nil {
		return 0, err
	}
	return weekdayIndex(year, month, day), nil
}

// WeekdayIndex returns 0 (Monday) .. 6 (Sunday) for the civil date of t.
func WeekdayIndex(t time.Time) int {
	return weekdayIndex(t.Year(), int(t.Month()), t.Day())
}

func weekdayIndex(year, month, day int) int {
	y := year
	if month < 3 {
		y--
	}
	w := (y + y/4 - y/100 + y/400 + sakamotoOffsets[month-1] + day) % 7 // 0=Sunday
	if w == 0 {
		return 6
	}
	return w - 1
}

// WeekdayName returns the Monday-first weekday name for idx.
func WeekdayName(idx int) string {
	return Weekdays[idx]
}

// ISOWeekOf returns the ISO-8601 week-numbering year and week of t.
// The week containing the year's first Thursday is week 1.
func ISOWeekOf(t time.Time) (weekYear, week int) {
	// Thursday of the same Monday-Sunday week decides the week-year.
	thursday := AddDays(t, 3-WeekdayIndex(t))
	weekYear = thursday.Year()
	week = (DayOfYear(thursday)-1)/7 + 1
	return weekYear, week
}

// StartOfISOWeek returns the Monday of the week containing t.
func StartOfISOWeek(t time.Time) time.Time {
	return AddDays(t, -WeekdayIndex(t))
}

// EndOfISOWeek returns the Sunday of the week containing t.
func EndOfISOWeek(t time.Time) time.Time {
	return AddDays(StartOfISOWeek(t), 6)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), DaysInMonth(t.Year(), t.Month()))
}

// StartOfYear returns January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return Date(t.Year(), time.January, 1)
}

// EndOfYear returns December 31st of t's year.
func EndOfYear(t time.Time) time.Time {
	return Date(t.Year(), time.December, 31)
}

// splitISO validates and splits the first 10 characters of a YYYY-MM-DD string.
func splitISO(iso string) (year, month, day int, err error) {
	if len(iso) < 10 {
		return 0, 0, 0, domainerror.NewParseError(iso, "too short")
	}
	s := iso[:10]
	if s[4] != '-' || s[7] != '-' {
		return 0, 0, 0, domainerror.NewParseError(iso, "expected YYYY-MM-DD")
	}
	if len(iso) > 10 {
		if iso[10] != 'T' && iso[10] != ' ' {
			return 0, 0, 0, domainerror.NewParseError(iso, "unexpected trailing characters")
		}
		if !isClock(iso[11:]) {
			return 0, 0, 0, domainerror.NewParseError(iso, "invalid time of day")
		}
	}

	year, err = parseDigits(s[0:4])
	if err != nil {
		return 0, 0, 0, domainerror.NewParseError(iso, "invalid year")
	}
	month, err = parseDigits(s[5:7])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, domainerror.NewParseError(iso, "invalid month")
	}
	day, err = parseDigits(s[8:10])
	if err != nil || day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return 0, 0, 0, domainerror.NewParseError(iso, "invalid day")
	}
	return year, month, day, nil
}

func parseDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// clockLayouts are the accepted time parts after the date. Fractional
// seconds are accepted by the seconds layouts.
var clockLayouts = []string{"15:04", "15:04Z07:00", "15:04:05", "15:04:05Z07:00"}

// isClock reports whether s is an RFC 3339 style time of day. Only its
// shape matters; the civil day comes from the date part.
func isClock(s string) bool {
	for _, layout := range clockLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
