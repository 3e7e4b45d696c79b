// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Date parses a yyyy-mm-dd string and panics on error.
func Date(s string) time.Time {
	return datetime.MustParseTime(datetime.DateLayout, s)
}

// ConstantSeries returns days consecutive calendar days starting at start,
// all with the same percentage rate.
func ConstantSeries(start time.Time, days int, rate decimal.Decimal) []rates.DailyRate {
	series := make([]rates.DailyRate, 0, days)
	for i := 0; i < days; i++ {
		series = append(series, rates.DailyRate{Date: datetime.AddDays(start, i), Rate: rate})
	}
	return series
}

// BusinessDaySeries returns one row per weekday between start and end
// inclusive, all with the same percentage rate.
func BusinessDaySeries(start, end time.Time, rate decimal.Decimal) []rates.DailyRate {
	var series []rates.DailyRate
	for d := datetime.Day(start); !d.After(end); d = datetime.AddDays(d, 1) {
		if datetime.IsWeekend(d) {
			continue
		}
		series = append(series, rates.DailyRate{Date: d, Rate: rate})
	}
	return series
}

// FindRate returns the row dated on date, or nil.
func FindRate(series []rates.DailyRate, date time.Time) *rates.DailyRate {
	for i := range series {
		if datetime.SameDay(series[i].Date, date) {
			return &series[i]
		}
	}
	return nil
}
