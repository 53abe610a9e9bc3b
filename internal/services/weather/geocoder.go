package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type nominatimAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Province     string `json:"province"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

type nominatimReverse struct {
	Error   string            `json:"error"`
	Address *nominatimAddress `json:"address"`
}

// ClientNominatim resolves city names to coordinates and back through a
// Nominatim-compatible geocoding API.
type ClientNominatim struct {
	api      upstream
	language string
}

func NewClientNominatim(
	apiURL, userAgent, lang string,
	httpClient HTTPClient,
	timeout time.Duration,
	logger zerolog.Logger,
) *ClientNominatim {
	return &ClientNominatim{
		api: upstream{
			name:      "Nominatim",
			baseURL:   strings.TrimRight(apiURL, "/"),
			client:    httpClient,
			logger:    logger,
			timeout:   timeout,
			userAgent: userAgent,
		},
		language: lang,
	}
}

func (c *ClientNominatim) ResolveCoordinates(ctx context.Context, city string) (models.Coordinates, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	var places []nominatimPlace
	if err := c.api.getJSON(ctx, "/search", params, &places); err != nil {
		return models.Coordinates{}, err
	}

	if len(places) == 0 {
		return models.Coordinates{}, fmt.Errorf("%w: no match for city %q", ErrNotFound, city)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: Nominatim: bad latitude %q", ErrUpstream, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: Nominatim: bad longitude %q", ErrUpstream, places[0].Lon)
	}

	return models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

func (c *ClientNominatim) ResolvePlaceName(ctx context.Context, coords models.Coordinates) (models.PlaceName, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("format", "json")
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	var raw nominatimReverse
	if err := c.api.getJSON(ctx, "/reverse", params, &raw); err != nil {
		return models.PlaceName{}, err
	}

	if raw.Address == nil {
		return models.PlaceName{}, fmt.Errorf("%w: no address at %.4f,%.4f %s",
			ErrNotFound, coords.Latitude, coords.Longitude, raw.Error)
	}

	return placeFromAddress(*raw.Address), nil
}

func placeFromAddress(addr nominatimAddress) models.PlaceName {
	caser := cases.Title(language.Und)

	return models.PlaceName{
		City:    caser.String(firstNonEmpty(addr.City, addr.Town, addr.Village, addr.Municipality)),
		Region:  caser.String(firstNonEmpty(addr.Province, addr.State)),
		Country: caser.String(addr.Country),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
