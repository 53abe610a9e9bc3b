package weather_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/weather"
)

func newNominatim(m *mockHTTPClient) *weather.ClientNominatim {
	return weather.NewClientNominatim("https://geo.test/", "weather-viewer-test", "en", m, time.Second, zerolog.Nop())
}

func Test_Nominatim_ResolveCoordinates_Success(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		q := req.URL.Query()
		return req.URL.Path == "/search" &&
			q.Get("q") == "Paris" &&
			q.Get("format") == "json" &&
			req.Header.Get("User-Agent") == "weather-viewer-test"
	})).Return(jsonResponse(http.StatusOK, `[{"lat": "48.85", "lon": "2.35", "display_name": "Paris, France"}]`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	coords, err := newNominatim(m).ResolveCoordinates(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 48.85, Longitude: 2.35}, coords)
}

func Test_Nominatim_ResolveCoordinates_NoMatch(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.Anything).Return(jsonResponse(http.StatusOK, `[]`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	coords, err := newNominatim(m).ResolveCoordinates(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNotFound)
	assert.Equal(t, models.Coordinates{}, coords)
}

func Test_Nominatim_ResolveCoordinates_BadLatitude(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.Anything).Return(jsonResponse(http.StatusOK, `[{"lat": "north", "lon": "2.35"}]`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	_, err := newNominatim(m).ResolveCoordinates(context.Background(), "Paris")
	assert.ErrorIs(t, err, weather.ErrUpstream)
}

func Test_Nominatim_ResolvePlaceName_PrefersProvince(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.Path == "/reverse" && req.URL.Query().Get("lat") == "45.4642"
	})).Return(jsonResponse(http.StatusOK, `{
	  "address": {"city": "milano", "province": "milano", "state": "lombardia", "country": "italia"}
	}`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	place, err := newNominatim(m).ResolvePlaceName(context.Background(),
		models.Coordinates{Latitude: 45.4642, Longitude: 9.19})
	require.NoError(t, err)
	assert.Equal(t, models.PlaceName{City: "Milano", Region: "Milano", Country: "Italia"}, place)
}

func Test_Nominatim_ResolvePlaceName_FallsBackToStateAndTown(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.Anything).Return(jsonResponse(http.StatusOK, `{
	  "address": {"town": "versailles", "state": "île de france", "country": "france"}
	}`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	place, err := newNominatim(m).ResolvePlaceName(context.Background(), parisCoordinates)
	require.NoError(t, err)
	assert.Equal(t, "Versailles", place.City)
	assert.Equal(t, "Île De France", place.Region)
	assert.Equal(t, "France", place.Country)
}

func Test_Nominatim_ResolvePlaceName_NoAddress(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.Anything).Return(jsonResponse(http.StatusOK, `{"error": "Unable to geocode"}`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	place, err := newNominatim(m).ResolvePlaceName(context.Background(), models.Coordinates{})
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNotFound)
	assert.Equal(t, models.PlaceName{}, place)
}

func Test_Nominatim_ServerError(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.Anything).Return(jsonResponse(http.StatusServiceUnavailable, `busy`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	_, err := newNominatim(m).ResolveCoordinates(context.Background(), "Paris")
	assert.ErrorIs(t, err, weather.ErrUpstream)
	assert.NotErrorIs(t, err, weather.ErrNotFound)
}
