package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/smallbiznis/eragon/internal/observability/metrics"
	"go.uber.org/zap"
)

// ReadThrough couples a Cache with the logging and metrics used by Fetch.
type ReadThrough struct {
	store   Cache
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewReadThrough(store Cache, log *zap.Logger, m *metrics.Metrics) *ReadThrough {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadThrough{store: store, log: log.Named("cache"), metrics: m}
}

func (r *ReadThrough) Store() Cache {
	return r.store
}

// Fetch returns the cached value for key, or computes it with load and stores it for ttl.
// Cache failures degrade to a direct load; only load errors are returned.
func Fetch[T any](ctx context.Context, r *ReadThrough, resource, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache get failed, reading from database", zap.String("key", key), zap.Error(err))
		found = false
	}
	if found {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			r.metrics.RecordCacheLookup(ctx, resource, true)
			return cached, nil
		}
		r.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}
	r.metrics.RecordCacheLookup(ctx, resource, false)

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		r.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := r.store.Set(ctx, key, encoded, ttl); err != nil {
		r.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
