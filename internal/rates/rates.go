// Package rates defines the daily rate series consumed by the accrual engine
// and the sources able to supply it.
package rates

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/shopspring/decimal"
)

// DailyRate is the percentage rate applied on a single date.
type DailyRate struct {
	Date time.Time       `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// Source supplies a rate series ordered ascending by date and filtered to
// dates on or after start.
type Source interface {
	FetchRates(ctx context.Context, start, end time.Time) ([]DailyRate, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, start, end time.Time) ([]DailyRate, error)

// FetchRates calls f.
func (f SourceFunc) FetchRates(ctx context.Context, start, end time.Time) ([]DailyRate, error) {
	return f(ctx, start, end)
}

// Normalize sorts the series by date, truncates dates to the calendar day,
// drops rows before start and rejects duplicate dates.
func Normalize(series []DailyRate, start time.Time) ([]DailyRate, error) {
	startDay := datetime.Day(start)
	out := make([]DailyRate, 0, len(series))
	for _, r := range series {
		day := datetime.Day(r.Date)
		if day.Before(startDay) {
			continue
		}
		out = append(out, DailyRate{Date: day, Rate: r.Rate})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	for i := 1; i < len(out); i++ {
		if out[i].Date.Equal(out[i-1].Date) {
			return nil, fmt.Errorf("duplicate rate for date %s", out[i].Date.Format(datetime.DateLayout))
		}
	}
	return out, nil
}

// coverageSlackDays is the longest run of non-business days (a weekend plus
// Carnival Monday and Tuesday) expected at either edge of a range or between
// two consecutive rows.
const coverageSlackDays = 4

// Covers reports whether the series spans start to end with every missing
// run of days short enough to be weekends or holidays, at the edges and
// between consecutive rows.
func Covers(series []DailyRate, start, end time.Time) bool {
	if len(series) == 0 {
		return false
	}

	first := series[0].Date
	last := series[len(series)-1].Date
	if datetime.DaysBetween(start, first) > coverageSlackDays ||
		datetime.DaysBetween(last, end) > coverageSlackDays {
		return false
	}
	_, _, found := FirstGap(series)
	return !found
}

// FirstGap returns the first pair of consecutive rows with more missing days
// between them than weekends and holidays explain.
func FirstGap(series []DailyRate) (time.Time, time.Time, bool) {
	for i := 1; i < len(series); i++ {
		if datetime.DaysBetween(series[i-1].Date, series[i].Date)-1 > coverageSlackDays {
			return series[i-1].Date, series[i].Date, true
		}
	}
	return time.Time{}, time.Time{}, false
}
