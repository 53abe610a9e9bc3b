package weather

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

type geocoder interface {
	ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error)
	ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error)
}

type provider interface {
	FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error)
	FetchForecast(ctx context.Context, coords models.Coordinates) (models.Forecast, error)
}

// Service is the weather client the view talks to: one geocoder and one
// weather provider behind whatever decorators the app stacks on them.
type Service struct {
	logger   zerolog.Logger
	geocoder geocoder
	provider provider
	now      func() time.Time
}

func NewService(logger zerolog.Logger, geo geocoder, prov provider) *Service {
	return &Service{logger: logger, geocoder: geo, provider: prov, now: time.Now}
}

// WithClock replaces the time source used for "today" in forecast derivation.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.Coordinates{}, ErrEmptyCity
	}
	return s.geocoder.ResolveCoordinates(ctx, city)
}

func (s *Service) ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error) {
	return s.geocoder.ResolvePlaceName(ctx, coords)
}

func (s *Service) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	return s.provider.FetchCurrent(ctx, coords)
}

func (s *Service) FetchForecast(ctx context.Context, coords models.Coordinates) (models.Forecast, error) {
	return s.provider.FetchForecast(ctx, coords)
}

// Search resolves the city once and fetches everything a page needs.
func (s *Service) Search(ctx context.Context, city string) (models.Snapshot, error) {
	searchID := ulid.Make().String()
	logger := s.logger.With().Str("search_id", searchID).Str("city", city).Logger()
	start := time.Now()

	logger.Info().Ctx(ctx).Msg("search started")

	coords, err := s.ResolveCoordinates(ctx, city)
	if err != nil {
		logger.Error().Ctx(ctx).Err(err).Msg("resolve coordinates failed")
		return models.Snapshot{}, err
	}

	var (
		current  models.CurrentConditions
		forecast models.Forecast
		place    models.PlaceName
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gErr error
		current, gErr = s.FetchCurrent(gctx, coords)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		forecast, gErr = s.FetchForecast(gctx, coords)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		place, gErr = s.ResolvePlaceName(gctx, coords)
		return gErr
	})
	if err := g.Wait(); err != nil {
		logger.Error().Ctx(ctx).Err(err).Msg("search failed")
		return models.Snapshot{}, err
	}

	loc := forecast.Location
	if loc == nil {
		loc = time.UTC
	}
	now := s.now().In(loc)

	snapshot := models.Snapshot{
		SearchID:    searchID,
		Query:       strings.TrimSpace(city),
		Coordinates: coords,
		Place:       place,
		Current:     current,
		Daily:       DeriveDailyForecast(forecast.Samples, now),
		Hourly:      DeriveHourlyForecast(forecast.Samples, now),
		FetchedAt:   now,
	}

	logger.Info().
		Ctx(ctx).
		Int("daily", len(snapshot.Daily)).
		Int("hourly", len(snapshot.Hourly)).
		Dur("duration_ms", time.Since(start)).
		Msg("search completed")

	return snapshot, nil
}
