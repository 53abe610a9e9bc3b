package decorators

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

type geocoder interface {
	ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error)
	ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error)
}

type cacheClient[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, error)
}

// CachedGeocoder keeps forward lookups in a shared cache. Reverse lookups
// always go to the wrapped geocoder.
type CachedGeocoder struct {
	inner  geocoder
	cache  cacheClient[models.Coordinates]
	logger zerolog.Logger
}

func NewCachedGeocoder(
	inner geocoder,
	cache cacheClient[models.Coordinates],
	logger zerolog.Logger,
) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache, logger: logger}
}

func geocodeKey(city string) string {
	return fmt.Sprintf("geocode:%s", strings.ToLower(strings.TrimSpace(city)))
}

func (g *CachedGeocoder) ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error) {
	key := geocodeKey(city)

	coords, err := g.cache.Get(ctx, key)
	if err == nil {
		g.logger.Info().
			Ctx(ctx).
			Str("city", city).
			Str("key", key).
			Msg("cache hit")
		return coords, nil
	}
	g.logger.Info().
		Ctx(ctx).
		Str("city", city).
		Str("key", key).
		Err(err).
		Msg("cache miss")

	coords, err = g.inner.ResolveCoordinates(ctx, city)
	if err != nil {
		return models.Coordinates{}, err
	}

	if err := g.cache.Set(ctx, key, coords); err != nil {
		g.logger.Error().
			Ctx(ctx).
			Str("city", city).
			Str("key", key).
			Err(err).
			Msg("cache set failed")
	}

	return coords, nil
}

func (g *CachedGeocoder) ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error) {
	return g.inner.ResolvePlaceName(ctx, coords)
}
