package weather

import (
	"fmt"
	"math"
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

func WindKmh(speedMs float64) float64 {
	return speedMs * 3600 / 1000
}

func VisibilityKm(meters int) int {
	return int(math.Round(float64(meters) / 1000))
}

func IconURL(iconID string) string {
	if iconID == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFormat, iconID)
}
