package redis

import (
	"context"
	"strings"
	"time"

	"github.com/gradehub/gradehub-bot/internal/domain/video"
)

// searchPrefix namespaces search result keys.
const searchPrefix = "search:"

// DefaultSearchTTL is how long search results stay cached. Search results
// for a study topic change slowly; an hour keeps the quota usage low
// without showing stale content.
const DefaultSearchTTL = time.Hour

// SearchCache caches video search results per normalized topic.
type SearchCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewSearchCache creates a SearchCache.
func NewSearchCache(cache *Cache, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	return &SearchCache{cache: cache, ttl: ttl}
}

// searchKey normalizes the topic into a cache key.
func searchKey(topic string) string {
	return searchPrefix + strings.ToLower(strings.Join(strings.Fields(topic), " "))
}

// Get returns cached results for a topic, or ErrCacheMiss.
func (s *SearchCache) Get(ctx context.Context, topic string) ([]video.Video, error) {
	var results []video.Video
	if err := s.cache.Get(ctx, searchKey(topic), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Set caches results for a topic. Empty result sets are not cached so a
// transient API failure doesn't pin an empty answer for the full TTL.
func (s *SearchCache) Set(ctx context.Context, topic string, results []video.Video) error {
	if len(results) == 0 {
		return nil
	}
	return s.cache.Set(ctx, searchKey(topic), results, s.ttl)
}
