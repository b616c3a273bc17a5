package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"photomap-service/internal/log"
)

type MemoryCache struct {
	entries    sync.Map // map[string]*memoryEntry
	count      atomic.Int64
	maxEntries int64
	now        func() time.Time

	// Statistics
	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	value      []byte
	expiresAt  time.Time
	lastAccess atomic.Int64 // unix nanos
}

// NewMemoryCache creates a process-local cache holding at most maxEntries
// values. A background sweep drops expired entries every sweepInterval;
// pass zero to disable it.
func NewMemoryCache(maxEntries int, sweepInterval time.Duration) *MemoryCache {
	mc := &MemoryCache{
		maxEntries: int64(maxEntries),
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if sweepInterval > 0 {
		go mc.cleanupExpired(sweepInterval)
	}
	return mc
}

func (mc *MemoryCache) Name() string {
	return "MEMORY"
}

func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := mc.entries.Load(key)
	if !ok {
		mc.misses.Add(1)
		return nil, false, nil
	}
	entry := value.(*memoryEntry)
	now := mc.now()
	if !now.Before(entry.expiresAt) {
		mc.remove(key)
		mc.misses.Add(1)
		return nil, false, nil
	}
	entry.lastAccess.Store(now.UnixNano())
	mc.hits.Add(1)
	return entry.value, true, nil
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := mc.now()
	entry := &memoryEntry{value: value, expiresAt: now.Add(ttl)}
	entry.lastAccess.Store(now.UnixNano())

	if _, loaded := mc.entries.Swap(key, entry); !loaded {
		if mc.count.Add(1) > mc.maxEntries && mc.maxEntries > 0 {
			mc.evictLRU(key)
		}
	}
	return nil
}

func (mc *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		mc.remove(key)
	}
	return nil
}

func (mc *MemoryCache) GetStats() LayerStats {
	hits := mc.hits.Load()
	misses := mc.misses.Load()
	return LayerStats{
		Name:    "Memory",
		Entries: int(mc.count.Load()),
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
	}
}

// Close stops the background sweep.
func (mc *MemoryCache) Close() {
	mc.stopOnce.Do(func() { close(mc.stop) })
}

func (mc *MemoryCache) remove(key string) {
	if _, ok := mc.entries.LoadAndDelete(key); ok {
		mc.count.Add(-1)
	}
}

// evictLRU drops the least recently read entry other than keep.
func (mc *MemoryCache) evictLRU(keep string) {
	var oldestKey string
	var oldest int64

	mc.entries.Range(func(k, v interface{}) bool {
		key := k.(string)
		if key == keep {
			return true
		}
		access := v.(*memoryEntry).lastAccess.Load()
		if oldestKey == "" || access < oldest {
			oldestKey = key
			oldest = access
		}
		return true
	})

	if oldestKey != "" {
		mc.remove(oldestKey)
	}
}

func (mc *MemoryCache) sweep() int {
	now := mc.now()
	var expired []string
	mc.entries.Range(func(k, v interface{}) bool {
		if !now.Before(v.(*memoryEntry).expiresAt) {
			expired = append(expired, k.(string))
		}
		return true
	})
	for _, key := range expired {
		mc.remove(key)
	}
	return len(expired)
}

func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			if n := mc.sweep(); n > 0 {
				log.Debug("memory cache: dropped expired entries", zap.Int("count", n))
			}
		}
	}
}
