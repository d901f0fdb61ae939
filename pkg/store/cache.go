package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/maquette-dev/maquette/pkg/manifest"
)

// CachedStore decorates a Store with a (id, version)-keyed TTL cache.
// Only exact-version reads are cached: "latest" requests always hit
// the underlying store, since a newer version may have been put by
// another writer.
type CachedStore struct {
	inner Store
	cache *gocache.Cache
}

// NewCachedStore wraps a store with a TTL cache.
func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(id, version string) string {
	return id + "@" + version
}

// Get retrieves a manifest, serving exact-version hits from cache.
func (s *CachedStore) Get(ctx context.Context, id, version string) (*manifest.Manifest, error) {
	if version != "" {
		if hit, ok := s.cache.Get(cacheKey(id, version)); ok {
			return hit.(*manifest.Manifest), nil
		}
	}

	m, err := s.inner.Get(ctx, id, version)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(cacheKey(m.ID, m.Version), m)
	return m, nil
}

// Put writes through to the underlying store and refreshes the cache
// entry for the written version.
func (s *CachedStore) Put(ctx context.Context, m *manifest.Manifest) (string, error) {
	id, err := s.inner.Put(ctx, m)
	if err != nil {
		return "", err
	}
	s.cache.SetDefault(cacheKey(m.ID, m.Version), m)
	return id, nil
}

// Invalidate drops the cache entry for (id, version).
func (s *CachedStore) Invalidate(id, version string) {
	s.cache.Delete(cacheKey(id, version))
}
