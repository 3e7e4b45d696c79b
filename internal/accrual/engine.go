// Package accrual compounds an initial capital over a daily rate series and
// records snapshots of the accrued value.
package accrual

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/iwvelando/selic-window/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrMissingData is returned when the rate series cannot support an accrual.
var ErrMissingData = errors.New("missing rate data")

// Snapshot is the accrued position on a date, recorded before that date's
// rate is applied.
type Snapshot struct {
	Date         time.Time       `json:"date"`
	Capital      decimal.Decimal `json:"capital"`
	AmountEarned decimal.Decimal `json:"amountEarned"`
}

// Summary describes the outcome of an accrual run.
type Summary struct {
	InitialCapital decimal.Decimal `json:"initialCapital"`
	FinalCapital   decimal.Decimal `json:"finalCapital"`
	AmountEarned   decimal.Decimal `json:"amountEarned"`
	ReturnRatio    decimal.Decimal `json:"returnRatio"`
	Snapshots      int             `json:"snapshots"`
}

// Engine runs accruals.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an accrual engine with the given logger.
// If logger is nil, it will use a no-op logger.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Accrue compounds initialCapital over series and returns the snapshots
// selected by frequency. Every row compounds, recorded or not. Rows dated
// after endDate are ignored.
func (e *Engine) Accrue(series []rates.DailyRate, initialCapital decimal.Decimal, frequency Frequency, endDate time.Time) ([]Snapshot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: rate series is empty", ErrMissingData)
	}
	if !frequency.Valid() {
		return nil, fmt.Errorf("invalid frequency %q", frequency)
	}
	if !initialCapital.IsPositive() {
		return nil, fmt.Errorf("initial capital must be positive, got %s", initialCapital)
	}

	end := datetime.Day(endDate)
	rows := trimAfter(series, end)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rate on or before %s", ErrMissingData, end.Format(datetime.DateLayout))
	}

	// The series must reach endDate for the final snapshot to carry that
	// date; when it stops short the last available row stands in for it.
	last := len(rows) - 1
	if !datetime.SameDay(rows[last].Date, end) {
		e.logger.Warn("rate series ends before the period end date",
			zap.String("op", "accrual.Accrue"),
			zap.String("lastRate", rows[last].Date.Format(datetime.DateLayout)),
			zap.String("endDate", end.Format(datetime.DateLayout)),
		)
	}

	var snapshots []Snapshot
	if frequency == Day {
		snapshots = make([]Snapshot, 0, len(rows))
	}

	amountEarned := decimal.Zero
	for i, row := range rows {
		if recordable(row.Date, frequency, end) || (i == last && frequency != Day) {
			snapshots = append(snapshots, Snapshot{
				Date:         row.Date,
				Capital:      initialCapital.Add(amountEarned),
				AmountEarned: amountEarned,
			})
		}
		growth := mathutil.ApplyPercentage(initialCapital.Add(amountEarned), row.Rate)
		amountEarned = amountEarned.Add(growth).Round(constants.AccrualPrecision)
	}

	e.logger.Debug("accrual complete",
		zap.String("op", "accrual.Accrue"),
		zap.String("frequency", frequency.String()),
		zap.Int("rows", len(rows)),
		zap.Int("snapshots", len(snapshots)),
		zap.String("amountEarned", mathutil.Round(amountEarned).String()),
	)

	return snapshots, nil
}

// recordable decides whether a row becomes a snapshot. The rollforward is
// evaluated per row.
func recordable(date time.Time, frequency Frequency, end time.Time) bool {
	switch frequency {
	case Day:
		return true
	case Month:
		return datetime.IsBusinessMonthEnd(date) || datetime.SameDay(date, end)
	case Year:
		return datetime.IsBusinessYearEnd(date) || datetime.SameDay(date, end)
	}
	return false
}

func trimAfter(series []rates.DailyRate, end time.Time) []rates.DailyRate {
	n := len(series)
	for n > 0 && datetime.Day(series[n-1].Date).After(end) {
		n--
	}
	return series[:n]
}

// Summarize reports the final position of a snapshot sequence.
func Summarize(initialCapital decimal.Decimal, snapshots []Snapshot) Summary {
	summary := Summary{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		AmountEarned:   decimal.Zero,
		ReturnRatio:    decimal.Zero,
		Snapshots:      len(snapshots),
	}
	if len(snapshots) == 0 {
		return summary
	}

	final := snapshots[len(snapshots)-1]
	summary.FinalCapital = final.Capital
	summary.AmountEarned = final.AmountEarned
	if !initialCapital.IsZero() {
		summary.ReturnRatio = mathutil.Ratio(initialCapital, final.Capital)
	}
	return summary
}
