// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/datetime"
)

// ValidateWindowFits warns when the period is too short to hold a single
// window, in which case no window can be found.
func ValidateWindowFits(startDate, endDate time.Time, windowLengthDays int) string {
	span := datetime.DaysBetween(startDate, endDate)
	if windowLengthDays > 0 && span < windowLengthDays {
		return fmt.Sprintf("Period %s to %s spans %d days, shorter than the %d day window - no window can be found",
			startDate.Format(constants.DateLayout), endDate.Format(constants.DateLayout), span, windowLengthDays)
	}
	return ""
}

// ValidateEndDate warns when the end date falls on a weekend, where no rate is
// published and the last snapshot falls back to the preceding business day.
func ValidateEndDate(endDate time.Time) string {
	if datetime.IsWeekend(endDate) {
		return fmt.Sprintf("End date %s is a %s - the final snapshot will be the last business day before it",
			endDate.Format(constants.DateLayout), endDate.Weekday())
	}
	return ""
}

// ValidateStartDate warns when the start date falls on a weekend, where the
// first rate is the following business day.
func ValidateStartDate(startDate time.Time) string {
	if datetime.IsWeekend(startDate) {
		return fmt.Sprintf("Start date %s is a %s - accrual begins on the next business day",
			startDate.Format(constants.DateLayout), startDate.Weekday())
	}
	return ""
}

// PeriodValidator collects warnings about a simulation period.
type PeriodValidator struct {
	StartDate        time.Time
	EndDate          time.Time
	WindowLengthDays int
}

// ValidateAll validates the period and returns warnings
func (pv *PeriodValidator) ValidateAll() []string {
	var warnings []string
	for _, w := range []string{
		ValidateStartDate(pv.StartDate),
		ValidateEndDate(pv.EndDate),
		ValidateWindowFits(pv.StartDate, pv.EndDate, pv.WindowLengthDays),
	} {
		if w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}
