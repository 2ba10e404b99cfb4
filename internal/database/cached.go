package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lanehub/internal/schema"
)

const (
	cityByNameStateNS = "cityByNameState"
	citiesByRadiusNS  = "citiesWithinRadius"
	cityCacheExpiry   = 24 * time.Hour
	radiusCacheExpiry = 6 * time.Hour
)

// CachedCityRepository fronts a CityRepository with the Redis cache so a batch
// of lanes around the same metro hits Oracle once. Only successful lookups are
// cached, repository failures always surface.
type CachedCityRepository struct {
	inner CityRepository
	cache RedisRepository
}

func NewCachedCityRepository(inner CityRepository, cache RedisRepository) *CachedCityRepository {
	return &CachedCityRepository{inner: inner, cache: cache}
}

func (c *CachedCityRepository) FindByNameState(ctx context.Context, city, state string) (*schema.City, error) {
	key := city + "," + state
	if cached, ok := c.cache.Get(cityByNameStateNS, key); ok {
		var record schema.City
		if err := json.Unmarshal(cached, &record); err == nil {
			return &record, nil
		}
		log.Warnf("discarding undecodable cache entry for %s", key)
	}

	record, err := c.inner.FindByNameState(ctx, city, state)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(record); err == nil {
		c.cache.AddToChannel(cityByNameStateNS, key, encoded, cityCacheExpiry)
	}
	return record, nil
}

func (c *CachedCityRepository) FindWithinRadius(ctx context.Context, lat, lon, radiusMiles float64) ([]schema.City, error) {
	key := fmt.Sprintf("%.4f:%.4f:%.0f", lat, lon, radiusMiles)
	if cached, ok := c.cache.Get(citiesByRadiusNS, key); ok {
		var records []schema.City
		if err := json.Unmarshal(cached, &records); err == nil {
			return records, nil
		}
		log.Warnf("discarding undecodable cache entry for %s", key)
	}

	records, err := c.inner.FindWithinRadius(ctx, lat, lon, radiusMiles)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(records); err == nil {
		c.cache.AddToChannel(citiesByRadiusNS, key, encoded, radiusCacheExpiry)
	}
	return records, nil
}
