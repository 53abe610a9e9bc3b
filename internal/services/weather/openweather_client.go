package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *int     `json:"pressure"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
	City struct {
		Timezone *int `json:"timezone"`
	} `json:"city"`
}

// ClientOpenWeatherMap fetches current conditions and the 5 day / 3 hour
// forecast from the OpenWeatherMap API in metric units.
type ClientOpenWeatherMap struct {
	APIKey string
	api    upstream
}

func NewClientOpenWeatherMap(
	apiKey, apiURL string,
	httpClient HTTPClient,
	timeout time.Duration,
	logger zerolog.Logger,
) *ClientOpenWeatherMap {
	return &ClientOpenWeatherMap{
		APIKey: apiKey,
		api: upstream{
			name:    "OpenWeatherMap",
			baseURL: strings.TrimRight(apiURL, "/"),
			client:  httpClient,
			logger:  logger,
			timeout: timeout,
		},
	}
}

func (c *ClientOpenWeatherMap) params(coords models.Coordinates) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("appid", c.APIKey)
	params.Set("units", "metric")
	return params
}

func (c *ClientOpenWeatherMap) FetchCurrent(
	ctx context.Context,
	coords models.Coordinates,
) (models.CurrentConditions, error) {
	var raw currentResponse
	if err := c.api.getJSON(ctx, "/weather", c.params(coords), &raw); err != nil {
		return models.CurrentConditions{}, err
	}

	if field := raw.missingField(); field != "" {
		c.api.logger.Error().
			Ctx(ctx).
			Str("field", field).
			Msg("OpenWeatherMap current response is incomplete")
		return models.CurrentConditions{}, missingFieldError(field)
	}

	return models.CurrentConditions{
		Condition:   raw.Weather[0].Main,
		Description: raw.Weather[0].Description,
		IconID:      raw.Weather[0].Icon,
		Temperature: *raw.Main.Temp,
		FeelsLike:   *raw.Main.FeelsLike,
		TempMin:     *raw.Main.TempMin,
		TempMax:     *raw.Main.TempMax,
		Pressure:    *raw.Main.Pressure,
		Humidity:    *raw.Main.Humidity,
		WindSpeed:   *raw.Wind.Speed,
		Visibility:  *raw.Visibility,
	}, nil
}

func (c *ClientOpenWeatherMap) FetchForecast(
	ctx context.Context,
	coords models.Coordinates,
) (models.Forecast, error) {
	var raw forecastResponse
	if err := c.api.getJSON(ctx, "/forecast", c.params(coords), &raw); err != nil {
		return models.Forecast{}, err
	}

	if raw.List == nil {
		return models.Forecast{}, missingFieldError("list")
	}

	loc := time.UTC
	if raw.City.Timezone != nil {
		loc = fixedZone(*raw.City.Timezone)
	}

	samples := make([]models.ForecastSample, 0, len(raw.List))
	for i, item := range raw.List {
		if item.Main == nil || item.Main.Temp == nil || item.Main.Humidity == nil {
			return models.Forecast{}, missingFieldError(fmt.Sprintf("list[%d].main", i))
		}
		if len(item.Weather) == 0 {
			return models.Forecast{}, missingFieldError(fmt.Sprintf("list[%d].weather", i))
		}
		samples = append(samples, models.ForecastSample{
			Time:        time.Unix(item.Dt, 0).In(loc),
			Temperature: *item.Main.Temp,
			Humidity:    *item.Main.Humidity,
			IconID:      item.Weather[0].Icon,
		})
	}

	return models.Forecast{Location: loc, Samples: samples}, nil
}

func (r currentResponse) missingField() string {
	switch {
	case len(r.Weather) == 0:
		return "weather"
	case r.Main == nil:
		return "main"
	case r.Main.Temp == nil:
		return "main.temp"
	case r.Main.FeelsLike == nil:
		return "main.feels_like"
	case r.Main.TempMin == nil:
		return "main.temp_min"
	case r.Main.TempMax == nil:
		return "main.temp_max"
	case r.Main.Pressure == nil:
		return "main.pressure"
	case r.Main.Humidity == nil:
		return "main.humidity"
	case r.Wind == nil || r.Wind.Speed == nil:
		return "wind.speed"
	case r.Visibility == nil:
		return "visibility"
	}
	return ""
}

func missingFieldError(field string) error {
	return fmt.Errorf("%w: OpenWeatherMap response missing %s", ErrUpstream, field)
}

// fixedZone turns an OpenWeatherMap UTC offset in seconds into a location.
func fixedZone(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	sign := '+'
	abs := offset
	if offset < 0 {
		sign = '-'
		abs = -offset
	}
	return time.FixedZone(fmt.Sprintf("UTC%c%02d:%02d", sign, abs/3600, abs%3600/60), offset)
}
