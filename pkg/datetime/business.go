package datetime

import "time"

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// rollBackOverWeekend moves t backward until it is a weekday.
func rollBackOverWeekend(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// LastBusinessDayOfMonth returns the last weekday of t's month.
func LastBusinessDayOfMonth(t time.Time) time.Time {
	// Day 0 of the next month normalizes to the last day of this one.
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return rollBackOverWeekend(last)
}

// LastBusinessDayOfYear returns the last weekday of t's year.
func LastBusinessDayOfYear(t time.Time) time.Time {
	last := time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	return rollBackOverWeekend(last)
}

// MonthEndRollforward returns the last business day of t's month when t is on
// or before it, otherwise the last business day of the following month.
// Holidays are not considered.
func MonthEndRollforward(t time.Time) time.Time {
	d := Day(t)
	target := LastBusinessDayOfMonth(d)
	if d.After(target) {
		next := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		target = LastBusinessDayOfMonth(next)
	}
	return target
}

// YearEndRollforward returns the last business day of t's year when t is on
// or before it, otherwise the last business day of the following year.
func YearEndRollforward(t time.Time) time.Time {
	d := Day(t)
	target := LastBusinessDayOfYear(d)
	if d.After(target) {
		target = LastBusinessDayOfYear(time.Date(d.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC))
	}
	return target
}

// IsBusinessMonthEnd reports whether t is its own month-end rollforward.
func IsBusinessMonthEnd(t time.Time) bool {
	return Day(t).Equal(MonthEndRollforward(t))
}

// IsBusinessYearEnd reports whether t is its own year-end rollforward.
func IsBusinessYearEnd(t time.Time) bool {
	return Day(t).Equal(YearEndRollforward(t))
}
