// Package cache holds the short-TTL entity caches shared by the route
// controller and the progressive section loader. Expiry is lazy: entries are
// dropped when a read finds them past their TTL, there is no eviction
// thread.
package cache

import (
	"fmt"
	"time"

	"github.com/bluele/gcache"

	"transitview.onebusaway.org/internal/models"
)

const (
	DefaultArrivalTTL = 5 * time.Minute
	DefaultNearbyTTL  = 5 * time.Minute

	defaultSize = 512
)

// ArrivalCache caches flattened arrival lists per stop id.
type ArrivalCache struct {
	cache gcache.Cache
	ttl   time.Duration
}

func NewArrivalCache(ttl time.Duration) *ArrivalCache {
	if ttl <= 0 {
		ttl = DefaultArrivalTTL
	}
	return &ArrivalCache{
		cache: gcache.New(defaultSize).LRU().Build(),
		ttl:   ttl,
	}
}

func (c *ArrivalCache) Get(stopID string) (models.StopArrivals, bool) {
	v, err := c.cache.Get(stopID)
	if err != nil {
		return models.StopArrivals{}, false
	}
	arrivals, ok := v.(models.StopArrivals)
	return arrivals, ok
}

func (c *ArrivalCache) Set(stopID string, arrivals models.StopArrivals) {
	_ = c.cache.SetWithExpire(stopID, arrivals, c.ttl)
}

// NearbyCache caches nearby-search results keyed by rounded location, radius
// and category. Rounding to three decimal places (~110m) lets close-by
// selections share an entry.
type NearbyCache struct {
	cache gcache.Cache
	ttl   time.Duration
}

func NewNearbyCache(ttl time.Duration) *NearbyCache {
	if ttl <= 0 {
		ttl = DefaultNearbyTTL
	}
	return &NearbyCache{
		cache: gcache.New(defaultSize).LRU().Build(),
		ttl:   ttl,
	}
}

// Key builds the cache key from a rounded coordinate, radius and category.
func (c *NearbyCache) Key(lat, lon, radiusMeters float64, category string) string {
	return fmt.Sprintf("%.3f|%.3f|%.0f|%s", lat, lon, radiusMeters, category)
}

func (c *NearbyCache) Get(key string) ([]models.NearbyPlace, bool) {
	v, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}
	places, ok := v.([]models.NearbyPlace)
	return places, ok
}

func (c *NearbyCache) Set(key string, places []models.NearbyPlace) {
	_ = c.cache.SetWithExpire(key, places, c.ttl)
}
