package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/dto/response"
	"artisan-marketplace/pkg/cache"
	"artisan-marketplace/pkg/metrics"

	"go.uber.org/zap"
)

const listGenerationKey = "artisans:list:gen"

// listingCache stores artisan listings per filter set. Every write that can change a
// listing bumps the generation, which orphans all keys built from the old one.
type listingCache struct {
	store   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

func newListingCache(store cache.Cache, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *listingCache {
	if store == nil {
		store = cache.NewNoop()
	}
	return &listingCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		log:     log.With(zap.String("component", "listing_cache")),
	}
}

// get returns the cached listing and the key to store a fresh one under.
// An empty key means the cache is unreachable and should be bypassed.
func (c *listingCache) get(ctx context.Context, filter entity.ArtisanFilter) ([]response.ArtisanResponse, string, bool) {
	gen, err := c.store.Version(ctx, listGenerationKey)
	if err != nil {
		c.log.Warn("Listing cache unavailable", zap.Error(err))
		return nil, "", false
	}

	key := listCacheKey(gen, filter)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.log.Warn("Listing cache read failed", zap.Error(err), zap.String("key", key))
		}
		c.record(false)
		return nil, key, false
	}

	var out []response.ArtisanResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("Discarding undecodable listing cache entry", zap.Error(err), zap.String("key", key))
		c.record(false)
		return nil, key, false
	}

	c.record(true)
	return out, key, true
}

func (c *listingCache) put(ctx context.Context, key string, listing []response.ArtisanResponse) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(listing)
	if err != nil {
		c.log.Warn("Failed to encode listing for cache", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("Listing cache write failed", zap.Error(err), zap.String("key", key))
	}
}

// invalidate never fails the caller; stale entries expire with the TTL anyway.
func (c *listingCache) invalidate(ctx context.Context) {
	if err := c.store.Bump(ctx, listGenerationKey); err != nil {
		c.log.Warn("Listing cache invalidation failed", zap.Error(err))
	}
}

func (c *listingCache) record(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(hit)
	}
}

// listCacheKey is stable for equal filters regardless of how they were supplied.
func listCacheKey(gen int64, f entity.ArtisanFilter) string {
	q := url.Values{}
	if f.Category != nil {
		q.Set("category", *f.Category)
	}
	if f.IsAvailable != nil {
		q.Set("is_available", strconv.FormatBool(*f.IsAvailable))
	}
	if f.TopRated {
		q.Set("top", "true")
	}
	// search and skill match case-insensitively, so their case does not split the cache
	if f.Search != nil && *f.Search != "" {
		q.Set("search", strings.ToLower(*f.Search))
	}
	if f.Skill != nil && *f.Skill != "" {
		q.Set("skill", strings.ToLower(*f.Skill))
	}
	if f.Booked != nil {
		q.Set("booked", strconv.FormatBool(*f.Booked))
	}

	return fmt.Sprintf("artisans:list:v%d:%s", gen, q.Encode())
}
