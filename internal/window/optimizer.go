// Package window searches a snapshot series for the fixed-length holding
// window with the highest return.
package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/iwvelando/selic-window/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrNoWindowFound means no candidate window produced a positive return,
	// or the range is shorter than the window.
	ErrNoWindowFound = errors.New("no profitable window found")

	// ErrDegenerateWindow means a candidate window started with zero capital.
	ErrDegenerateWindow = errors.New("degenerate window: start capital is zero")
)

// Window is the best holding period found by the optimizer. StartDate and
// EndDate are the nominal candidate dates; StartObserved and EndObserved are
// the snapshot dates whose capital was compared.
type Window struct {
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	StartObserved time.Time       `json:"startObserved"`
	EndObserved   time.Time       `json:"endObserved"`
	StartCapital  decimal.Decimal `json:"startCapital"`
	EndCapital    decimal.Decimal `json:"endCapital"`
	ProfitRatio   decimal.Decimal `json:"profitRatio"`
	Truncated     bool            `json:"truncated"`
}

// Step describes one evaluated candidate.
type Step struct {
	Candidate   time.Time
	WindowEnd   time.Time
	StartIndex  int
	EndIndex    int
	ProfitRatio decimal.Decimal
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithObserver registers fn to receive every evaluated candidate in order.
func WithObserver(fn func(Step)) Option {
	return func(o *Optimizer) {
		o.observer = fn
	}
}

// Optimizer finds the best fixed-length window over a snapshot series.
type Optimizer struct {
	logger   *zap.Logger
	observer func(Step)
}

// NewOptimizer creates an optimizer. If logger is nil, it will use a no-op
// logger.
func NewOptimizer(logger *zap.Logger, opts ...Option) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Optimizer{logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// cursor holds the forward-only indices of one scan. Both indices only ever
// increase because candidate start dates only increase.
type cursor struct {
	start    int
	end      int
	endFound bool
}

// seekStart moves start to the first snapshot dated on or after t and reports
// whether one exists.
func (c *cursor) seekStart(snapshots []accrual.Snapshot, t time.Time) bool {
	for c.start < len(snapshots) && snapshots[c.start].Date.Before(t) {
		c.start++
	}
	return c.start < len(snapshots)
}

// seekEnd moves end to the last snapshot dated on or before windowEnd and
// reports whether such a snapshot has been found at any point in the scan.
// Past the end of the data it stays on the last snapshot.
func (c *cursor) seekEnd(snapshots []accrual.Snapshot, windowEnd time.Time) bool {
	for c.end+1 < len(snapshots) && !snapshots[c.end+1].Date.After(windowEnd) {
		c.end++
	}
	if !c.endFound && !snapshots[c.end].Date.After(windowEnd) {
		c.endFound = true
	}
	return c.endFound
}

// FindBestWindow scans candidate start dates from rangeStart while they are
// before rangeEnd, one calendar day at a time, comparing capital at the first
// snapshot on or after the candidate with capital at the last snapshot on or
// before candidate+windowLengthDays. The strictly highest positive profit
// ratio wins; ties keep the earliest candidate.
func (o *Optimizer) FindBestWindow(snapshots []accrual.Snapshot, windowLengthDays int, rangeStart, rangeEnd time.Time) (Window, error) {
	if windowLengthDays <= 0 {
		return Window{}, fmt.Errorf("window length must be positive, got %d", windowLengthDays)
	}
	if len(snapshots) == 0 {
		return Window{}, fmt.Errorf("%w: no snapshots to scan", ErrNoWindowFound)
	}

	start := datetime.Day(rangeStart)
	end := datetime.Day(rangeEnd)
	if span := datetime.DaysBetween(start, end); span < windowLengthDays {
		return Window{}, fmt.Errorf("%w: range of %d days is shorter than the %d day window", ErrNoWindowFound, span, windowLengthDays)
	}

	lastDate := snapshots[len(snapshots)-1].Date
	bestRatio := decimal.Zero
	var best Window
	found := false
	evaluated := 0

	var c cursor
	for t := start; t.Before(end); t = datetime.AddDays(t, 1) {
		windowEnd := datetime.AddDays(t, windowLengthDays)

		if !c.seekStart(snapshots, t) {
			break
		}
		if !c.seekEnd(snapshots, windowEnd) || c.end < c.start {
			continue
		}

		startSnap := snapshots[c.start]
		endSnap := snapshots[c.end]
		if startSnap.Capital.IsZero() {
			return Window{}, fmt.Errorf("%w: snapshot %s", ErrDegenerateWindow, startSnap.Date.Format(datetime.DateLayout))
		}

		ratio := mathutil.Ratio(startSnap.Capital, endSnap.Capital)
		evaluated++
		if o.observer != nil {
			o.observer(Step{
				Candidate:   t,
				WindowEnd:   windowEnd,
				StartIndex:  c.start,
				EndIndex:    c.end,
				ProfitRatio: ratio,
			})
		}

		if ratio.GreaterThan(bestRatio) {
			bestRatio = ratio
			found = true
			best = Window{
				StartDate:     t,
				EndDate:       windowEnd,
				StartObserved: startSnap.Date,
				EndObserved:   endSnap.Date,
				StartCapital:  startSnap.Capital,
				EndCapital:    endSnap.Capital,
				ProfitRatio:   ratio,
				Truncated:     windowEnd.After(lastDate),
			}
		}
	}

	if !found {
		o.logger.Debug("no window beat the zero-profit baseline",
			zap.String("op", "window.FindBestWindow"),
			zap.Int("windowLengthDays", windowLengthDays),
			zap.Int("evaluated", evaluated),
		)
		return Window{}, fmt.Errorf("%w: %d candidate windows evaluated", ErrNoWindowFound, evaluated)
	}

	o.logger.Debug("best window found",
		zap.String("op", "window.FindBestWindow"),
		zap.Int("windowLengthDays", windowLengthDays),
		zap.Int("evaluated", evaluated),
		zap.String("start", best.StartDate.Format(datetime.DateLayout)),
		zap.String("end", best.EndDate.Format(datetime.DateLayout)),
		zap.String("profitRatio", best.ProfitRatio.String()),
		zap.Bool("truncated", best.Truncated),
	)

	return best, nil
}
