package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/cache"
	"photomap-service/internal/log"
	"photomap-service/internal/metrics"
	"photomap-service/internal/storage"
)

// URLResolver issues time-limited read URLs for stored photos and keeps
// them in a cache layer for half their lifetime.
type URLResolver struct {
	store   storage.ObjectStore
	cache   cache.Layer
	metrics *metrics.Metrics
}

// NewURLResolver creates a resolver. layer may be nil to disable caching.
func NewURLResolver(store storage.ObjectStore, layer cache.Layer, m *metrics.Metrics) *URLResolver {
	return &URLResolver{store: store, cache: layer, metrics: m}
}

func signedURLKey(path string, ttl time.Duration) string {
	return fmt.Sprintf("signed:%d:%s", int64(ttl.Seconds()), path)
}

// Resolve returns a URL for the object at path that stays valid for ttl
// (at least ttl/2 when served from cache).
func (r *URLResolver) Resolve(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if path == "" {
		return "", apperr.Storage(nil, "photo has no stored object")
	}
	key := signedURLKey(path, ttl)

	if r.cache != nil {
		cached, found, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Warn("signed url cache lookup failed", log.SourceRedis, zap.String("path", path), zap.Error(err))
		} else if found {
			r.metrics.RecordSignedURL("cached")
			return string(cached), nil
		}
	}

	start := time.Now()
	url, err := r.store.PresignGet(ctx, path, ttl)
	r.metrics.RecordSignLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		r.metrics.RecordSignedURL("failed")
		return "", apperr.Storage(err, "failed to create image url")
	}
	r.metrics.RecordSignedURL("signed")

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, []byte(url), ttl/2); err != nil {
			log.Warn("failed to cache signed url", log.SourceRedis, zap.String("path", path), zap.Error(err))
		}
	}
	return url, nil
}

// Invalidate drops the cached URLs of path for each of the given lifetimes.
func (r *URLResolver) Invalidate(ctx context.Context, path string, ttls ...time.Duration) {
	if r.cache == nil || len(ttls) == 0 {
		return
	}
	keys := make([]string, len(ttls))
	for i, ttl := range ttls {
		keys[i] = signedURLKey(path, ttl)
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Warn("failed to invalidate signed urls", log.SourceRedis, zap.String("path", path), zap.Error(err))
	}
}
