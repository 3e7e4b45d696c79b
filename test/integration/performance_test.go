package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/window"
	"github.com/iwvelando/selic-window/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BenchmarkDailyAccrualAndWindow measures a full daily accrual over twenty
// years of business days followed by the window search.
func BenchmarkDailyAccrualAndWindow(b *testing.B) {
	series := testutil.BusinessDaySeries(testutil.Date("2000-01-03"), testutil.Date("2019-12-31"), decimal.RequireFromString("0.04"))
	end := series[len(series)-1].Date
	engine := accrual.NewEngine(zap.NewNop())
	optimizer := window.NewOptimizer(zap.NewNop())
	capital := decimal.NewFromInt(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snapshots, err := engine.Accrue(series, capital, accrual.Day, end)
		if err != nil {
			b.Fatalf("Accrue() error = %v", err)
		}
		if _, err := optimizer.FindBestWindow(snapshots, 500, series[0].Date, end); err != nil {
			b.Fatalf("FindBestWindow() error = %v", err)
		}
	}
}

// TestPerformanceRegression makes sure a long daily run stays well within an
// interactive response time.
func TestPerformanceRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	srv := newFakeBCB(t, nil)
	conf := loadTestConfiguration(t, srv.URL)
	conf.Frequency = "day"

	began := time.Now()
	result, err := runFromConfiguration(t, conf)
	elapsed := time.Since(began)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	maxDuration := 10 * time.Second
	if elapsed > maxDuration {
		t.Errorf("daily simulation took %v, expected less than %v", elapsed, maxDuration)
	}
	t.Logf("daily simulation over %d rates took %v", result.RateCount, elapsed)
}

// TestDataConsistency checks that repeated runs over the same rates produce
// identical results.
func TestDataConsistency(t *testing.T) {
	srv := newFakeBCB(t, nil)
	conf := loadTestConfiguration(t, srv.URL)

	first, err := runFromConfiguration(t, conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for run := 1; run < 3; run++ {
		result, err := runFromConfiguration(t, conf)
		if err != nil {
			t.Fatalf("Run() failed on run %d: %v", run, err)
		}
		if len(result.Snapshots) != len(first.Snapshots) {
			t.Fatalf("run %d: %d snapshots, expected %d", run, len(result.Snapshots), len(first.Snapshots))
		}
		for i := range result.Snapshots {
			if !result.Snapshots[i].Capital.Equal(first.Snapshots[i].Capital) {
				t.Errorf("run %d, snapshot %d: capital %s != %s", run, i,
					result.Snapshots[i].Capital, first.Snapshots[i].Capital)
			}
		}
		if !result.Window.ProfitRatio.Equal(first.Window.ProfitRatio) || !result.Window.StartDate.Equal(first.Window.StartDate) {
			t.Errorf("run %d: window %+v differs from %+v", run, result.Window, first.Window)
		}
	}
}

// TestFrequencyVariations runs the same period at every frequency. The final
// capital must not depend on how often snapshots are recorded.
func TestFrequencyVariations(t *testing.T) {
	series := testutil.BusinessDaySeries(testutil.Date("2015-01-02"), testutil.Date("2018-12-31"), decimal.RequireFromString("0.035"))
	engine := accrual.NewEngine(zap.NewNop())
	capital := decimal.NewFromInt(1000)
	end := testutil.Date("2018-12-31")

	var finals []decimal.Decimal
	for _, freq := range []accrual.Frequency{accrual.Day, accrual.Month, accrual.Year} {
		t.Run(string(freq), func(t *testing.T) {
			snapshots, err := engine.Accrue(series, capital, freq, end)
			if err != nil {
				t.Fatalf("Accrue() error = %v", err)
			}
			finals = append(finals, accrual.Summarize(capital, snapshots).FinalCapital)
		})
	}

	for i := 1; i < len(finals); i++ {
		if !finals[i].Equal(finals[0]) {
			t.Errorf("final capital %s differs from daily %s", finals[i], finals[0])
		}
	}
}
