package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	maxTTLJitter        = 15 * time.Second
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "evalytics_report_cache_lookups_total",
		Help: "Report cache lookups by result (hit, stale, miss, error).",
	},
	[]string{"result"},
)

// cacheEntry records when a value was stored so hits can be aged.
type cacheEntry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// addTTLJitter spreads ttl by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= maxTTLJitter {
		return ttl
	}
	return ttl + rand.N(2*maxTTLJitter) - maxTTLJitter
}

func store[T any](ctx context.Context, c Cacher, key string, value T, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultSetTimeout)
	defer cancel()
	return c.Set(ctx, key, cacheEntry[T]{Value: value, StoredAt: time.Now().UTC()}, addTTLJitter(ttl))
}

// refresh recomputes key off the request path. Concurrent refreshes of the
// same key collapse into one.
func refresh[T any](ctx context.Context, c Cacher, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fn FetchFunc[T]) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			fetchCtx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
			defer cancel()

			value, err := fn(fetchCtx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			if err := store(ctx, c, key, value, ttl); err != nil {
				logger.Warn("failed to update cache in background", zap.String("key", key), zap.Error(err))
			} else {
				logger.Debug("cache refreshed in background", zap.String("key", key))
			}
			return nil, nil
		})
	}()
}

// FindAndCache serves key from c when present. Entries older than half the
// TTL are returned as-is and refreshed in the background. Misses are computed
// once per key through sf and written back asynchronously.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var entry cacheEntry[T]
	err := c.Get(ctx, key, &entry)
	switch {
	case err == nil:
		if time.Since(entry.StoredAt) >= ttl/2 {
			cacheLookups.WithLabelValues("stale").Inc()
			logger.Debug("stale cache hit", zap.String("key", key), zap.Time("stored_at", entry.StoredAt))
			refresh(ctx, c, sf, key, ttl, logger, fn)
		} else {
			cacheLookups.WithLabelValues("hit").Inc()
			logger.Debug("cache hit", zap.String("key", key))
		}
		return entry.Value, nil

	case errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues("miss").Inc()
		logger.Debug("cache miss", zap.String("key", key))

	default:
		cacheLookups.WithLabelValues("error").Inc()
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		go func() {
			if err := store(context.WithoutCancel(ctx), c, key, value, ttl); err != nil {
				logger.Warn("failed to set cache on miss", zap.String("key", key), zap.Error(err))
			}
		}()
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
