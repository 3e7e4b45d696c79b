package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the byte store used by CachedSource.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache on top of a Redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis at addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the cached bytes or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedSource is a read-through cache in front of another Source. Cache
// failures are logged and bypassed.
type CachedSource struct {
	upstream Source
	cache    Cache
	series   int
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCachedSource wraps upstream with cache. series is part of the cache key so
// several series can share one Redis database.
func NewCachedSource(logger *zap.Logger, upstream Source, cache Cache, series int, ttl time.Duration) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		upstream: upstream,
		cache:    cache,
		series:   series,
		ttl:      ttl,
		logger:   logger,
	}
}

// CacheKey returns the key under which a range is cached.
func CacheKey(series int, start, end time.Time) string {
	return fmt.Sprintf("selic:rates:%d:%s:%s", series, start.Format(datetime.DateLayout), end.Format(datetime.DateLayout))
}

// FetchRates serves the range from cache when possible and populates the
// cache after an upstream fetch.
func (s *CachedSource) FetchRates(ctx context.Context, start, end time.Time) ([]DailyRate, error) {
	key := CacheKey(s.series, start, end)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached []DailyRate
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			s.logger.Debug("rate cache hit",
				zap.String("op", "rates.CachedSource.FetchRates"),
				zap.String("key", key),
				zap.Int("rows", len(cached)),
			)
			return cached, nil
		} else {
			s.logger.Warn("discarding undecodable cache entry",
				zap.String("op", "rates.CachedSource.FetchRates"),
				zap.String("key", key),
				zap.Error(jsonErr),
			)
		}
	case errors.Is(err, ErrCacheMiss):
		s.logger.Debug("rate cache miss",
			zap.String("op", "rates.CachedSource.FetchRates"),
			zap.String("key", key),
		)
	default:
		s.logger.Warn("rate cache unavailable",
			zap.String("op", "rates.CachedSource.FetchRates"),
			zap.String("key", key),
			zap.Error(err),
		)
	}

	series, err := s.upstream.FetchRates(ctx, start, end)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(series)
	if err != nil {
		return series, nil
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("failed to populate rate cache",
			zap.String("op", "rates.CachedSource.FetchRates"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return series, nil
}
