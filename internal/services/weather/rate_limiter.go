package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

// RateLimitedGeocoder spaces out geocoding calls; public Nominatim allows
// at most one request per second.
type RateLimitedGeocoder struct {
	wrapped geocoder
	limiter *rate.Limiter
}

func NewRateLimitedGeocoder(wrapped geocoder, rps float64, burst int) *RateLimitedGeocoder {
	return &RateLimitedGeocoder{
		wrapped: wrapped,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedGeocoder) ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error) {
	if err := r.wait(ctx); err != nil {
		return models.Coordinates{}, err
	}
	return r.wrapped.ResolveCoordinates(ctx, city)
}

func (r *RateLimitedGeocoder) ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error) {
	if err := r.wait(ctx); err != nil {
		return models.PlaceName{}, err
	}
	return r.wrapped.ResolvePlaceName(ctx, coords)
}

// wait reports a wait that cannot finish before the deadline as
// context.DeadlineExceeded, the same as a deadline hit while waiting.
func (r *RateLimitedGeocoder) wait(ctx context.Context) error {
	err := r.limiter.Wait(ctx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("rate limit wait canceled: %w", ctx.Err())
	default:
		return fmt.Errorf("rate limit wait: %w: %w", context.DeadlineExceeded, err)
	}
}
