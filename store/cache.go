package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nameCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsfeed_name_cache_hits_total",
		Help: "Display name lookups served from cache.",
	})
	nameCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsfeed_name_cache_misses_total",
		Help: "Display name lookups that went to the user store.",
	})
)

type Directory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	DisplayName(ctx context.Context, id string) (string, error)
}

// CachedDirectory caches display names for a short TTL. Existence checks
// always go to the underlying directory.
type CachedDirectory struct {
	next  Directory
	names *expirable.LRU[string, string]
}

func NewCachedDirectory(next Directory, size int, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		next:  next,
		names: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (d *CachedDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	return d.next.UserExists(ctx, id)
}

func (d *CachedDirectory) DisplayName(ctx context.Context, id string) (string, error) {
	if name, ok := d.names.Get(id); ok {
		nameCacheHits.Inc()
		return name, nil
	}
	nameCacheMisses.Inc()

	name, err := d.next.DisplayName(ctx, id)
	if err != nil {
		return "", err
	}
	d.names.Add(id, name)
	return name, nil
}
