// Package cache provides the key/value layers used to reuse signed URLs and
// comment threads between requests.
package cache

import (
	"context"
	"time"
)

// Layer is a byte-oriented cache with per-entry expiry.
type Layer interface {
	Name() string
	// Get returns found=false on a miss or an expired entry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GetStats() LayerStats
}

type LayerStats struct {
	Name    string  `json:"name"`
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
