package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/internal/window"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func staticSource(series []rates.DailyRate) rates.Source {
	return rates.SourceFunc(func(_ context.Context, start, end time.Time) ([]rates.DailyRate, error) {
		var out []rates.DailyRate
		for _, r := range series {
			if !r.Date.Before(start) && !r.Date.After(end) {
				out = append(out, r)
			}
		}
		return out, nil
	})
}

type recordingNotifier struct {
	results []Result
	err     error
}

func (n *recordingNotifier) SimulationCompleted(_ context.Context, result Result) error {
	n.results = append(n.results, result)
	return n.err
}

func mustParams(t *testing.T, start, end string, frequency accrual.Frequency, length int) Parameters {
	t.Helper()
	p, err := NewParameters(testutil.Date(start), testutil.Date(end), decimal.NewFromInt(1000), frequency, length)
	if err != nil {
		t.Fatalf("NewParameters() error = %v", err)
	}
	return p
}

func TestNewParameters(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		capital  string
		freq     accrual.Frequency
		length   int
		wantErr  bool
		expected int
	}{
		{name: "Valid", start: "2010-01-04", end: "2015-12-30", capital: "1000", freq: accrual.Month, length: 500, expected: 500},
		{name: "Default window length", start: "2010-01-04", end: "2015-12-30", capital: "1000", freq: accrual.Day, expected: constants.DefaultWindowLengthDays},
		{name: "Start before minimum", start: "1994-12-30", end: "2015-12-30", capital: "1000", freq: accrual.Day, length: 10, wantErr: true},
		{name: "End equals start", start: "2010-01-04", end: "2010-01-04", capital: "1000", freq: accrual.Day, length: 10, wantErr: true},
		{name: "End before start", start: "2010-01-04", end: "2009-01-04", capital: "1000", freq: accrual.Day, length: 10, wantErr: true},
		{name: "Zero capital", start: "2010-01-04", end: "2015-12-30", capital: "0", freq: accrual.Day, length: 10, wantErr: true},
		{name: "Negative capital", start: "2010-01-04", end: "2015-12-30", capital: "-5", freq: accrual.Day, length: 10, wantErr: true},
		{name: "Unknown frequency", start: "2010-01-04", end: "2015-12-30", capital: "1000", freq: accrual.Frequency("week"), length: 10, wantErr: true},
		{name: "Negative window", start: "2010-01-04", end: "2015-12-30", capital: "1000", freq: accrual.Day, length: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParameters(testutil.Date(tt.start), testutil.Date(tt.end), decimal.RequireFromString(tt.capital), tt.freq, tt.length)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewParameters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameters) {
					t.Errorf("error %v does not wrap ErrInvalidParameters", err)
				}
				return
			}
			if p.WindowLengthDays != tt.expected {
				t.Errorf("WindowLengthDays = %d, expected %d", p.WindowLengthDays, tt.expected)
			}
		})
	}
}

func TestRunFindsWindow(t *testing.T) {
	series := testutil.BusinessDaySeries(testutil.Date("2020-01-02"), testutil.Date("2022-12-30"), decimal.RequireFromString("0.03"))
	params := mustParams(t, "2020-01-02", "2022-12-30", accrual.Month, 500)

	result, err := Run(context.Background(), zap.NewNop(), staticSource(series), params)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.RateCount != len(series) {
		t.Errorf("RateCount = %d, expected %d", result.RateCount, len(series))
	}
	if len(result.Snapshots) == 0 {
		t.Fatal("expected snapshots")
	}
	last := result.Snapshots[len(result.Snapshots)-1]
	if !last.Date.Equal(params.EndDate) {
		t.Errorf("last snapshot %v, expected the end date %v", last.Date, params.EndDate)
	}
	if result.Window == nil {
		t.Fatal("expected a window")
	}
	if !result.Window.ProfitRatio.IsPositive() {
		t.Errorf("profitRatio = %s, expected positive", result.Window.ProfitRatio)
	}
	if !result.Summary.FinalCapital.Equal(last.Capital) {
		t.Errorf("summary final capital %s, expected %s", result.Summary.FinalCapital, last.Capital)
	}
}

func TestRunWithoutProfitableWindow(t *testing.T) {
	series := testutil.BusinessDaySeries(testutil.Date("2020-01-02"), testutil.Date("2022-12-30"), decimal.Zero)
	params := mustParams(t, "2020-01-02", "2022-12-30", accrual.Day, 500)

	result, err := Run(context.Background(), nil, staticSource(series), params)
	if !errors.Is(err, window.ErrNoWindowFound) {
		t.Fatalf("Run() error = %v, expected ErrNoWindowFound", err)
	}
	if len(result.Snapshots) != len(series) {
		t.Errorf("snapshots = %d, expected %d", len(result.Snapshots), len(series))
	}
	if result.Window != nil {
		t.Errorf("expected no window, got %+v", result.Window)
	}
}

func TestRunErrors(t *testing.T) {
	params := mustParams(t, "2020-01-02", "2022-12-30", accrual.Day, 500)
	upstreamErr := errors.New("connection refused")

	tests := []struct {
		name     string
		source   rates.Source
		sentinel error
	}{
		{
			name: "Source failure",
			source: rates.SourceFunc(func(context.Context, time.Time, time.Time) ([]rates.DailyRate, error) {
				return nil, upstreamErr
			}),
			sentinel: ErrSourceUnavailable,
		},
		{
			name:     "Empty series",
			source:   staticSource(nil),
			sentinel: accrual.ErrMissingData,
		},
		{
			name:     "Series ends early",
			source:   staticSource(testutil.BusinessDaySeries(testutil.Date("2020-01-02"), testutil.Date("2021-06-30"), decimal.Zero)),
			sentinel: accrual.ErrMissingData,
		},
		{
			name: "Series with missing year",
			source: staticSource(append(
				testutil.BusinessDaySeries(testutil.Date("2020-01-02"), testutil.Date("2020-12-31"), decimal.Zero),
				testutil.BusinessDaySeries(testutil.Date("2022-01-03"), testutil.Date("2022-12-30"), decimal.Zero)...,
			)),
			sentinel: accrual.ErrMissingData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), nil, tt.source, params)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Run() error = %v, expected %v", err, tt.sentinel)
			}
		})
	}
}

func TestRunnerNotifies(t *testing.T) {
	growing := testutil.BusinessDaySeries(testutil.Date("2020-01-02"), testutil.Date("2022-12-30"), decimal.RequireFromString("0.03"))
	flat := testutil.BusinessDaySeries(testutil.Date("2020-01-02"), testutil.Date("2022-12-30"), decimal.Zero)
	params := mustParams(t, "2020-01-02", "2022-12-30", accrual.Year, 500)

	t.Run("Profitable window", func(t *testing.T) {
		notifier := &recordingNotifier{}
		_, err := NewRunner(nil, staticSource(growing), notifier).Run(context.Background(), params)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(notifier.results) != 1 || notifier.results[0].Window == nil {
			t.Errorf("expected one notification carrying a window, got %+v", notifier.results)
		}
	})

	t.Run("No window still notifies", func(t *testing.T) {
		notifier := &recordingNotifier{}
		_, err := NewRunner(nil, staticSource(flat), notifier).Run(context.Background(), params)
		if !errors.Is(err, window.ErrNoWindowFound) {
			t.Fatalf("Run() error = %v", err)
		}
		if len(notifier.results) != 1 {
			t.Errorf("expected one notification, got %d", len(notifier.results))
		}
	})

	t.Run("Notifier failure is not fatal", func(t *testing.T) {
		notifier := &recordingNotifier{err: errors.New("broker down")}
		if _, err := NewRunner(nil, staticSource(growing), notifier).Run(context.Background(), params); err != nil {
			t.Errorf("Run() error = %v, expected notifier errors to be logged only", err)
		}
	})

	t.Run("Failed runs do not notify", func(t *testing.T) {
		notifier := &recordingNotifier{}
		_, err := NewRunner(nil, staticSource(nil), notifier).Run(context.Background(), params)
		if err == nil {
			t.Fatal("expected an error")
		}
		if len(notifier.results) != 0 {
			t.Errorf("expected no notifications, got %d", len(notifier.results))
		}
	})
}
