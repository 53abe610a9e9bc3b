package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/weather"
)

const (
	chartWidth   = 640
	chartHeight  = 220
	chartPadding = 32
)

// Page is the rendered form of a State: every value is display-ready text.
type Page struct {
	Status     Status       `json:"status"`
	Generation uint64       `json:"generation"`
	Query      string       `json:"query"`
	Error      string       `json:"error,omitempty"`
	Place      string       `json:"place,omitempty"`
	Current    *CurrentCard `json:"current,omitempty"`
	Daily      []Tile       `json:"daily"`
	Hourly     []Tile       `json:"hourly"`
	Chart      *Chart       `json:"chart,omitempty"`
	FetchedAt  string       `json:"fetched_at,omitempty"`
}

type CurrentCard struct {
	Condition   string `json:"condition"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feels_like"`
	TempMin     string `json:"temp_min"`
	TempMax     string `json:"temp_max"`
	Pressure    string `json:"pressure"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Visibility  string `json:"visibility"`
}

type Tile struct {
	Label       string `json:"label"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	IconURL     string `json:"icon_url"`
}

// Chart is a temperature-vs-hour line in SVG user units.
type Chart struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Points string       `json:"points"`
	Labels []ChartLabel `json:"labels"`
	Min    string       `json:"min"`
	Max    string       `json:"max"`
}

type ChartLabel struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Hour        string  `json:"hour"`
	Temperature string  `json:"temperature"`
}

func Present(st State) Page {
	page := Page{
		Status:     st.Status,
		Generation: st.Generation,
		Query:      st.Query,
		Error:      st.Error,
		Daily:      []Tile{},
		Hourly:     []Tile{},
	}

	if st.Snapshot == nil {
		return page
	}

	snap := st.Snapshot
	page.Place = placeLine(snap.Place)
	page.Current = currentCard(snap.Current)
	page.Daily = tiles(snap.Daily)
	page.Hourly = tiles(snap.Hourly)
	page.Chart = chart(snap.Hourly)
	page.FetchedAt = snap.FetchedAt.Format(time.RFC1123)

	return page
}

func Temperature(celsius float64) string {
	return fmt.Sprintf("%d°", roundInt(celsius))
}

func Wind(speedMs float64) string {
	return fmt.Sprintf("%d km/h", roundInt(weather.WindKmh(speedMs)))
}

func Visibility(meters int) string {
	return fmt.Sprintf("%d km", weather.VisibilityKm(meters))
}

func Humidity(percent int) string {
	return strconv.Itoa(percent) + "%"
}

func currentCard(c models.CurrentConditions) *CurrentCard {
	return &CurrentCard{
		Condition:   c.Condition,
		Description: c.Description,
		IconURL:     weather.IconURL(c.IconID),
		Temperature: Temperature(c.Temperature),
		FeelsLike:   Temperature(c.FeelsLike),
		TempMin:     Temperature(c.TempMin),
		TempMax:     Temperature(c.TempMax),
		Pressure:    fmt.Sprintf("%d hPa", c.Pressure),
		Humidity:    Humidity(c.Humidity),
		Wind:        Wind(c.WindSpeed),
		Visibility:  Visibility(c.Visibility),
	}
}

func tiles(entries []models.ForecastEntry) []Tile {
	out := make([]Tile, 0, len(entries))
	for _, e := range entries {
		out = append(out, Tile{
			Label:       e.Label,
			Temperature: Temperature(e.Temperature),
			Humidity:    Humidity(e.Humidity),
			IconURL:     weather.IconURL(e.IconID),
		})
	}
	return out
}

func chart(entries []models.ForecastEntry) *Chart {
	if len(entries) == 0 {
		return nil
	}

	lo, hi := entries[0].Temperature, entries[0].Temperature
	for _, e := range entries[1:] {
		lo = math.Min(lo, e.Temperature)
		hi = math.Max(hi, e.Temperature)
	}

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)

	points := make([]string, 0, len(entries))
	labels := make([]ChartLabel, 0, len(entries))
	for i, e := range entries {
		x := float64(chartPadding) + plotW/2
		if len(entries) > 1 {
			x = float64(chartPadding) + plotW*float64(i)/float64(len(entries)-1)
		}
		y := float64(chartPadding) + plotH/2
		if hi > lo {
			y = float64(chartPadding) + plotH*(hi-e.Temperature)/(hi-lo)
		}

		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
		labels = append(labels, ChartLabel{
			X:           math.Round(x*10) / 10,
			Y:           math.Round(y*10) / 10,
			Hour:        e.Label,
			Temperature: Temperature(e.Temperature),
		})
	}

	return &Chart{
		Width:  chartWidth,
		Height: chartHeight,
		Points: strings.Join(points, " "),
		Labels: labels,
		Min:    Temperature(lo),
		Max:    Temperature(hi),
	}
}

func placeLine(p models.PlaceName) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.City, p.Region, p.Country} {
		if s != "" && (len(parts) == 0 || parts[len(parts)-1] != s) {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
