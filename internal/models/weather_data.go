package models

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions is the current-weather payload in metric units:
// temperatures in °C, pressure in hPa, humidity in %, wind in m/s, visibility in m.
type CurrentConditions struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	IconID      string  `json:"icon_id"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Pressure    int     `json:"pressure"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Visibility  int     `json:"visibility"`
}

// ForecastSample is one 3-hour step of the forecast list. Time is expressed
// in the forecast location's zone.
type ForecastSample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	IconID      string    `json:"icon_id"`
}

type Forecast struct {
	Location *time.Location
	Samples  []ForecastSample
}

type ForecastEntry struct {
	Label       string    `json:"label"`
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	IconID      string    `json:"icon_id"`
}

type PlaceName struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Snapshot is everything one search produced. It is never mutated after creation.
type Snapshot struct {
	SearchID    string            `json:"search_id"`
	Query       string            `json:"query"`
	Coordinates Coordinates       `json:"coordinates"`
	Place       PlaceName         `json:"place"`
	Current     CurrentConditions `json:"current"`
	Daily       []ForecastEntry   `json:"daily"`
	Hourly      []ForecastEntry   `json:"hourly"`
	FetchedAt   time.Time         `json:"fetched_at"`
}
