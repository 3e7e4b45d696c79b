// Package simulation runs one accrual and window search over a fetched rate
// series.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/internal/window"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrInvalidParameters is returned by NewParameters when any field is
	// out of range.
	ErrInvalidParameters = errors.New("invalid simulation parameters")

	// ErrSourceUnavailable wraps failures of the rate source.
	ErrSourceUnavailable = errors.New("rate source unavailable")
)

// Parameters holds the validated inputs of one simulation.
type Parameters struct {
	StartDate        time.Time         `json:"startDate"`
	EndDate          time.Time         `json:"endDate"`
	InitialCapital   decimal.Decimal   `json:"initialCapital"`
	Frequency        accrual.Frequency `json:"frequency"`
	WindowLengthDays int               `json:"windowLengthDays"`
}

// NewParameters validates its inputs and returns Parameters with dates
// truncated to the calendar day. A windowLengthDays of zero selects the
// default window length.
func NewParameters(startDate, endDate time.Time, initialCapital decimal.Decimal, frequency accrual.Frequency, windowLengthDays int) (Parameters, error) {
	p := Parameters{
		StartDate:        datetime.Day(startDate),
		EndDate:          datetime.Day(endDate),
		InitialCapital:   initialCapital,
		Frequency:        frequency,
		WindowLengthDays: windowLengthDays,
	}
	if p.WindowLengthDays == 0 {
		p.WindowLengthDays = constants.DefaultWindowLengthDays
	}

	var problems []string
	minStart := datetime.MustParseTime(constants.DateLayout, constants.MinStartDate)
	if p.StartDate.Before(minStart) {
		problems = append(problems, fmt.Sprintf("start date %s is before %s", p.StartDate.Format(constants.DateLayout), constants.MinStartDate))
	}
	if !p.EndDate.After(p.StartDate) {
		problems = append(problems, fmt.Sprintf("end date %s must be after start date %s",
			p.EndDate.Format(constants.DateLayout), p.StartDate.Format(constants.DateLayout)))
	}
	if !p.InitialCapital.IsPositive() {
		problems = append(problems, fmt.Sprintf("initial capital must be positive, got %s", p.InitialCapital))
	}
	if !p.Frequency.Valid() {
		problems = append(problems, fmt.Sprintf("invalid frequency %q", p.Frequency))
	}
	if p.WindowLengthDays < 0 {
		problems = append(problems, fmt.Sprintf("window length must be positive, got %d", p.WindowLengthDays))
	}

	if len(problems) > 0 {
		return Parameters{}, fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(problems, "; "))
	}
	return p, nil
}

// Result holds everything produced by a simulation. Window is nil when no
// profitable window exists.
type Result struct {
	Parameters Parameters         `json:"parameters"`
	RateCount  int                `json:"rateCount"`
	Summary    accrual.Summary    `json:"summary"`
	Snapshots  []accrual.Snapshot `json:"snapshots"`
	Window     *window.Window     `json:"window"`
}

// Notifier is told about every completed simulation.
type Notifier interface {
	SimulationCompleted(ctx context.Context, result Result) error
}

// Runner executes simulations against a rate source.
type Runner struct {
	logger    *zap.Logger
	source    rates.Source
	notifiers []Notifier
}

// NewRunner creates a Runner. If logger is nil, it will use a no-op logger.
func NewRunner(logger *zap.Logger, source rates.Source, notifiers ...Notifier) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, source: source, notifiers: notifiers}
}

// Run fetches the rates for the period, accrues them and searches for the best
// window. When no profitable window exists the result still carries the
// snapshots and the returned error wraps window.ErrNoWindowFound.
func (r *Runner) Run(ctx context.Context, params Parameters) (Result, error) {
	result, err := Run(ctx, r.logger, r.source, params)
	if err != nil && !errors.Is(err, window.ErrNoWindowFound) {
		return result, err
	}

	for _, n := range r.notifiers {
		if notifyErr := n.SimulationCompleted(ctx, result); notifyErr != nil {
			r.logger.Warn("failed to notify simulation completion",
				zap.String("op", "simulation.Runner.Run"),
				zap.Error(notifyErr),
			)
		}
	}
	return result, err
}

// Run executes a single simulation without notifications.
func Run(ctx context.Context, logger *zap.Logger, source rates.Source, params Parameters) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := Result{Parameters: params}

	series, err := source.FetchRates(ctx, params.StartDate, params.EndDate)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	result.RateCount = len(series)
	if from, to, gap := rates.FirstGap(series); gap {
		return result, fmt.Errorf("%w: no rates between %s and %s", accrual.ErrMissingData,
			from.Format(constants.DateLayout), to.Format(constants.DateLayout))
	}
	if !rates.Covers(series, params.StartDate, params.EndDate) {
		return result, fmt.Errorf("%w: rate series does not cover %s to %s", accrual.ErrMissingData,
			params.StartDate.Format(constants.DateLayout), params.EndDate.Format(constants.DateLayout))
	}

	for _, row := range series {
		logger.Debug("rate",
			zap.String("op", "simulation.Run"),
			zap.String("date", row.Date.Format(constants.DateLayout)),
			zap.String("rate", row.Rate.String()),
		)
	}

	snapshots, err := accrual.NewEngine(logger).Accrue(series, params.InitialCapital, params.Frequency, params.EndDate)
	if err != nil {
		return result, fmt.Errorf("failed to accrue rates: %w", err)
	}
	result.Snapshots = snapshots
	result.Summary = accrual.Summarize(params.InitialCapital, snapshots)

	best, err := window.NewOptimizer(logger).FindBestWindow(snapshots, params.WindowLengthDays, params.StartDate, params.EndDate)
	if err != nil {
		if errors.Is(err, window.ErrNoWindowFound) {
			logger.Info("no profitable window in period",
				zap.String("op", "simulation.Run"),
				zap.Int("windowLengthDays", params.WindowLengthDays),
			)
		}
		return result, err
	}
	result.Window = &best

	logger.Info("simulation completed",
		zap.String("op", "simulation.Run"),
		zap.Int("rates", result.RateCount),
		zap.Int("snapshots", len(snapshots)),
		zap.String("finalCapital", result.Summary.FinalCapital.String()),
		zap.String("profitRatio", best.ProfitRatio.String()),
	)
	return result, nil
}
