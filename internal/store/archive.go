// Package store archives fetched rate series and completed simulations in
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/pkg/datetime"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Archive is a PostgreSQL-backed rate archive.
type Archive struct {
	conn   *sql.DB
	logger *zap.Logger
}

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, logger *zap.Logger, dsn string) (*Archive, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(logger, conn), nil
}

// New wraps an existing connection. If logger is nil, it will use a no-op
// logger.
func New(logger *zap.Logger, conn *sql.DB) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{conn: conn, logger: logger}
}

// Migrate applies all pending embedded migrations.
func (a *Archive) Migrate() error {
	driver, err := postgres.WithInstance(a.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	a.logger.Debug("archive schema ready",
		zap.String("op", "store.Archive.Migrate"),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

// SaveRates upserts a rate series in a single transaction.
func (a *Archive) SaveRates(ctx context.Context, series int, rows []rates.DailyRate) error {
	tx, err := a.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_rates (series, rate_date, rate, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (series, rate_date) DO UPDATE SET
			rate = EXCLUDED.rate,
			fetched_at = EXCLUDED.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, series, datetime.Day(r.Date), r.Rate, now); err != nil {
			return fmt.Errorf("failed to save rate for %s: %w", r.Date.Format(datetime.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.logger.Debug("archived rates",
		zap.String("op", "store.Archive.SaveRates"),
		zap.Int("series", series),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// LoadRates returns the archived rates of series between start and end,
// inclusive, ordered by date.
func (a *Archive) LoadRates(ctx context.Context, series int, start, end time.Time) ([]rates.DailyRate, error) {
	query := `
		SELECT rate_date, rate
		FROM daily_rates
		WHERE series = $1 AND rate_date BETWEEN $2 AND $3
		ORDER BY rate_date
	`
	rows, err := a.conn.QueryContext(ctx, query, series, datetime.Day(start), datetime.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	defer rows.Close()

	var out []rates.DailyRate
	for rows.Next() {
		var r rates.DailyRate
		if err := rows.Scan(&r.Date, &r.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		r.Date = datetime.Day(r.Date)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rates: %w", err)
	}
	return out, nil
}

// SimulationCompleted records a finished simulation run.
func (a *Archive) SimulationCompleted(ctx context.Context, result simulation.Result) error {
	params := result.Parameters
	var windowStart, windowEnd sql.NullTime
	var profitRatio sql.NullString
	if w := result.Window; w != nil {
		windowStart = sql.NullTime{Time: w.StartDate, Valid: true}
		windowEnd = sql.NullTime{Time: w.EndDate, Valid: true}
		profitRatio = sql.NullString{String: w.ProfitRatio.String(), Valid: true}
	}

	query := `
		INSERT INTO simulation_runs (
			start_date, end_date, initial_capital, frequency, window_length_days,
			final_capital, window_start, window_end, profit_ratio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := a.conn.ExecContext(ctx, query,
		params.StartDate, params.EndDate, params.InitialCapital, string(params.Frequency), params.WindowLengthDays,
		result.Summary.FinalCapital, windowStart, windowEnd, profitRatio,
	)
	if err != nil {
		return fmt.Errorf("failed to record simulation run: %w", err)
	}
	return nil
}

// countRuns returns the number of recorded simulation runs.
func (a *Archive) countRuns(ctx context.Context) (int, error) {
	var n int
	if err := a.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM simulation_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count simulation runs: %w", err)
	}
	return n, nil
}
