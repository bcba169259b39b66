package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// DefaultTTL bounds how stale an entry can get when no write invalidates it.
const DefaultTTL = 5 * time.Minute

// Revalidator serves reads from a Store and refetches on miss. Writers call
// Invalidate with the same key so the next read goes to the source.
// Store failures are logged and bypassed; they never fail a read.
type Revalidator struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRevalidator(store Store, ttl time.Duration, logger zerolog.Logger) *Revalidator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Revalidator{store: store, ttl: ttl, logger: logger}
}

// Fetch returns the cached value under key, or calls fetch and caches its
// result. Fetch errors are returned and nothing is cached.
func Fetch[T any](ctx context.Context, r *Revalidator, key string, fetch func(context.Context) (T, error)) (T, error) {
	if data, ok, err := r.store.Get(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		r.logger.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return v, nil
	}
	if err := r.store.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

// Invalidate drops key so the next Fetch goes to the source.
func (r *Revalidator) Invalidate(ctx context.Context, key string) {
	if err := r.store.Delete(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
