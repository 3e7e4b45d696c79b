package store

import (
	"context"
	"time"

	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"go.uber.org/zap"
)

// RateArchive is the subset of Archive used by ArchivedSource.
type RateArchive interface {
	SaveRates(ctx context.Context, series int, rows []rates.DailyRate) error
	LoadRates(ctx context.Context, series int, start, end time.Time) ([]rates.DailyRate, error)
}

// ArchivedSource serves rates from the archive when it covers the requested
// range without gaps and otherwise fetches from upstream and archives the
// result.
type ArchivedSource struct {
	logger   *zap.Logger
	archive  RateArchive
	upstream rates.Source
	series   int
}

// NewArchivedSource creates an ArchivedSource. If logger is nil, it will use a
// no-op logger.
func NewArchivedSource(logger *zap.Logger, archive RateArchive, upstream rates.Source, series int) *ArchivedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchivedSource{logger: logger, archive: archive, upstream: upstream, series: series}
}

// FetchRates implements rates.Source. Archive failures are logged and never
// prevent an upstream fetch.
func (s *ArchivedSource) FetchRates(ctx context.Context, start, end time.Time) ([]rates.DailyRate, error) {
	fields := []zap.Field{
		zap.String("op", "store.ArchivedSource.FetchRates"),
		zap.Int("series", s.series),
		zap.String("start", start.Format(datetime.DateLayout)),
		zap.String("end", end.Format(datetime.DateLayout)),
	}

	stored, err := s.archive.LoadRates(ctx, s.series, start, end)
	if err != nil {
		s.logger.Warn("failed to read rate archive", append(fields, zap.Error(err))...)
	} else if from, to, gap := rates.FirstGap(stored); gap {
		s.logger.Debug("rate archive has a gap, fetching upstream", append(fields,
			zap.String("gapFrom", from.Format(datetime.DateLayout)),
			zap.String("gapTo", to.Format(datetime.DateLayout)),
		)...)
	} else if rates.Covers(stored, start, end) {
		s.logger.Debug("serving rates from archive", append(fields, zap.Int("rows", len(stored)))...)
		return stored, nil
	}

	fetched, err := s.upstream.FetchRates(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.archive.SaveRates(ctx, s.series, fetched); err != nil {
		s.logger.Warn("failed to archive rates", append(fields, zap.Error(err))...)
	}
	return fetched, nil
}
