package weather_test

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, ok := args.Get(0).(*http.Response)
	if !ok {
		return nil, args.Error(1)
	}
	return resp, args.Error(1)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error) {
	args := m.Called(ctx, city)
	data, ok := args.Get(0).(models.Coordinates)
	if !ok {
		return models.Coordinates{}, args.Error(1)
	}
	return data, args.Error(1)
}

func (m *mockGeocoder) ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error) {
	args := m.Called(ctx, coords)
	data, ok := args.Get(0).(models.PlaceName)
	if !ok {
		return models.PlaceName{}, args.Error(1)
	}
	return data, args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	args := m.Called(ctx, coords)
	data, ok := args.Get(0).(models.CurrentConditions)
	if !ok {
		return models.CurrentConditions{}, args.Error(1)
	}
	return data, args.Error(1)
}

func (m *mockProvider) FetchForecast(ctx context.Context, coords models.Coordinates) (models.Forecast, error) {
	args := m.Called(ctx, coords)
	data, ok := args.Get(0).(models.Forecast)
	if !ok {
		return models.Forecast{}, args.Error(1)
	}
	return data, args.Error(1)
}

var parisCoordinates = models.Coordinates{Latitude: 48.85, Longitude: 2.35}
