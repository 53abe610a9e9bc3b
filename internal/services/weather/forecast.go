package weather

import (
	"fmt"
	"slices"
	"time"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
)

const (
	noonHour     = 12
	dayLabelForm = "Monday 02"

	// half of the 3-hour forecast step
	maxNoonDistance = 90 * time.Minute
)

// DeriveDailyForecast keeps, for every day after the day of now, the sample
// closest to local noon, preserving input order. Days are evaluated in each
// sample's own location. A day whose nearest sample is more than half a
// forecast step away from noon (a partial first or last day) is skipped.
func DeriveDailyForecast(samples []models.ForecastSample, now time.Time) []models.ForecastEntry {
	best := make(map[string]int)
	days := make([]string, 0, len(samples)/8+1)

	for i, s := range samples {
		if !startOfDay(s.Time).After(startOfDay(now.In(s.Time.Location()))) {
			continue
		}
		if noonDistance(s.Time) > maxNoonDistance {
			continue
		}

		day := s.Time.Format(time.DateOnly)
		j, seen := best[day]
		if !seen {
			days = append(days, day)
			best[day] = i
			continue
		}
		if noonDistance(s.Time) < noonDistance(samples[j].Time) {
			best[day] = i
		}
	}

	picked := make([]int, 0, len(days))
	for _, day := range days {
		picked = append(picked, best[day])
	}
	slices.Sort(picked)

	entries := make([]models.ForecastEntry, 0, len(picked))
	for _, i := range picked {
		entries = append(entries, entryFrom(samples[i], samples[i].Time.Format(dayLabelForm)))
	}

	return entries
}

func noonDistance(t time.Time) time.Duration {
	d := t.Sub(startOfDay(t).Add(noonHour * time.Hour))
	if d < 0 {
		return -d
	}
	return d
}

// DeriveHourlyForecast keeps the samples that fall on the calendar day after
// referenceDate, evaluated in referenceDate's location, labelled "<h> AM|PM".
func DeriveHourlyForecast(samples []models.ForecastSample, referenceDate time.Time) []models.ForecastEntry {
	target := startOfDay(referenceDate).AddDate(0, 0, 1)
	loc := referenceDate.Location()

	entries := make([]models.ForecastEntry, 0, 8)
	for _, s := range samples {
		local := s.Time.In(loc)
		if !startOfDay(local).Equal(target) {
			continue
		}
		entries = append(entries, entryFrom(s, HourLabel(local.Hour())))
	}

	return entries
}

// HourLabel converts a 0-23 hour to 12-hour form. Noon is "12 PM", midnight "12 AM".
func HourLabel(hour int) string {
	display := hour % noonHour
	if display == 0 {
		display = noonHour
	}

	suffix := "AM"
	if hour >= noonHour {
		suffix = "PM"
	}

	return fmt.Sprintf("%d %s", display, suffix)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func entryFrom(s models.ForecastSample, label string) models.ForecastEntry {
	return models.ForecastEntry{
		Label:       label,
		Time:        s.Time,
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		IconID:      s.IconID,
	}
}
