package main

import (
	"context"
	"fmt"

	"github.com/iwvelando/selic-window/internal/config"
	"github.com/iwvelando/selic-window/internal/publish"
	"github.com/iwvelando/selic-window/internal/rates"
	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/internal/store"
	"go.uber.org/zap"
)

// buildRunner assembles the rate source chain and the completion notifiers
// enabled in conf. The returned cleanup releases every opened connection.
func buildRunner(ctx context.Context, logger *zap.Logger, conf *config.Configuration) (*simulation.Runner, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var source rates.Source = rates.NewBCBClient(logger, conf.Source.BaseURL, conf.Source.Series, conf.Source.Timeout)

	if conf.CacheEnabled() {
		cache, err := rates.NewRedisCache(ctx, conf.Cache.Address, conf.Cache.Password, conf.Cache.DB)
		if err != nil {
			logger.Warn("rate cache unavailable, continuing without it",
				zap.String("op", "main.buildRunner"),
				zap.String("address", conf.Cache.Address),
				zap.Error(err),
			)
		} else {
			source = rates.NewCachedSource(logger, source, cache, conf.Source.Series, conf.Cache.TTL)
			cleanups = append(cleanups, func() { _ = cache.Close() })
		}
	}

	var notifiers []simulation.Notifier
	if conf.ArchiveEnabled() {
		archive, err := store.Open(ctx, logger, conf.Archive.DSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to open rate archive: %w", err)
		}
		cleanups = append(cleanups, func() { _ = archive.Close() })
		if err := archive.Migrate(); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to migrate rate archive: %w", err)
		}
		source = store.NewArchivedSource(logger, archive, source, conf.Source.Series)
		notifiers = append(notifiers, archive)
	}

	if conf.PublisherEnabled() {
		producer := publish.NewProducer(logger, conf.Publisher.Brokers, conf.Publisher.Topic)
		cleanups = append(cleanups, func() { _ = producer.Close() })
		notifiers = append(notifiers, producer)
	}

	return simulation.NewRunner(logger, source, notifiers...), cleanup, nil
}
