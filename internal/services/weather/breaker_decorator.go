package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.RepeatNumber
		},
		// an unknown city or a superseded search says nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, name string, fn func() (T, error)) (T, error) {
	var zero T

	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s unavailable: %w", ErrUpstream, name, err)
		}
		return zero, fmt.Errorf("%s unavailable: %w", name, err)
	}

	res, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned unexpected result", ErrUpstream, name)
	}
	return res, nil
}

type BreakerGeocoder struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped geocoder
}

func NewBreakerGeocoder(name string, cfg BreakerConfig, wrapped geocoder) *BreakerGeocoder {
	return &BreakerGeocoder{name: name, cb: newCircuitBreaker(name, cfg), wrapped: wrapped}
}

func (b *BreakerGeocoder) ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error) {
	return execute(b.cb, b.name, func() (models.Coordinates, error) {
		return b.wrapped.ResolveCoordinates(ctx, city)
	})
}

func (b *BreakerGeocoder) ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error) {
	return execute(b.cb, b.name, func() (models.PlaceName, error) {
		return b.wrapped.ResolvePlaceName(ctx, coords)
	})
}

type BreakerProvider struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped provider
}

func NewBreakerProvider(name string, cfg BreakerConfig, wrapped provider) *BreakerProvider {
	return &BreakerProvider{name: name, cb: newCircuitBreaker(name, cfg), wrapped: wrapped}
}

func (b *BreakerProvider) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	return execute(b.cb, b.name, func() (models.CurrentConditions, error) {
		return b.wrapped.FetchCurrent(ctx, coords)
	})
}

func (b *BreakerProvider) FetchForecast(ctx context.Context, coords models.Coordinates) (models.Forecast, error) {
	return execute(b.cb, b.name, func() (models.Forecast, error) {
		return b.wrapped.FetchForecast(ctx, coords)
	})
}
