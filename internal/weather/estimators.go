package weather

import (
	"math"
	"time"

	"github.com/skyscope/skyscope-server/internal/common"
)

// synodicMonth is the mean length of a lunar phase cycle in days.
const synodicMonth = 29.530588853

// MoonPhase returns the synodic phase fraction in [0,1) for the given
// time: 0 is a new moon, 0.5 a full moon. The civil date is converted to
// a Julian day number first (separate branch for January/February).
func MoonPhase(t time.Time) float64 {
	year, month, day := t.UTC().Date()
	m := int(month)
	if m < 3 {
		year--
		m += 12
	}

	c := float64(year) / 100
	e := float64(year % 100)
	jd := math.Floor(146097*c/4) +
		math.Floor(1461*e/4) +
		math.Floor(float64(153*m+2)/5) +
		float64(day) + 1721119

	phase := math.Mod((jd-2451550.1)/synodicMonth, 1)
	if phase < 0 {
		phase++
	}
	return phase
}

// moonPhaseNames covers the eight named phases; thresholds sit at
// multiples of 1/8 offset by 1/16, wrapping back to New Moon.
var moonPhaseNames = []struct {
	upTo float64
	name string
}{
	{0.0625, "New Moon"},
	{0.1875, "Waxing Crescent"},
	{0.3125, "First Quarter"},
	{0.4375, "Waxing Gibbous"},
	{0.5625, "Full Moon"},
	{0.6875, "Waning Gibbous"},
	{0.8125, "Last Quarter"},
	{0.9375, "Waning Crescent"},
}

// MoonPhaseName maps a phase fraction to one of the eight named phases.
func MoonPhaseName(phase float64) string {
	for _, p := range moonPhaseNames {
		if phase < p.upTo {
			return p.name
		}
	}
	return "New Moon"
}

// MoonIllumination returns the illuminated disc percentage for a phase
// fraction: 0% at a new moon, 100% at a full moon.
func MoonIllumination(phase float64) int {
	return int(math.Round(50 * (1 - math.Cos(phase*2*math.Pi))))
}

// scoreBand is one rung of a descending threshold ladder: the value earns
// Score when it exceeds Threshold (or equals it, when Inclusive).
type scoreBand struct {
	Threshold float64
	Inclusive bool
	Score     int
}

// Pollen scoring bands. The thresholds are heuristic, tuned to the rough
// relationship between weather and airborne pollen: warm, dry, windy days
// spread more of it.
var (
	pollenTemperatureBands = []scoreBand{
		{Threshold: 25, Inclusive: true, Score: 4},
		{Threshold: 15, Score: 3},
		{Threshold: 10, Score: 2},
	}
	pollenHumidityBands = []scoreBand{
		{Threshold: 70, Inclusive: true, Score: 1},
		{Threshold: 40, Score: 2},
	}
	pollenWindBands = []scoreBand{
		{Threshold: 20, Score: 3},
		{Threshold: 10, Score: 2},
	}
)

func bandScore(v float64, bands []scoreBand, fallback int) int {
	for _, b := range bands {
		if v > b.Threshold || (b.Inclusive && v == b.Threshold) {
			return b.Score
		}
	}
	return fallback
}

// EstimatePollenLevel derives a 1-5 pollen level from current conditions.
// Rain washes pollen out; clear skies and clouds keep it airborne. The
// summed band scores are divided by three, rounded, and clamped to [1,5].
func EstimatePollenLevel(temperature, humidity, windSpeed float64, condition string) int {
	score := bandScore(temperature, pollenTemperatureBands, 1) +
		bandScore(humidity, pollenHumidityBands, 3) +
		bandScore(windSpeed, pollenWindBands, 1)

	switch {
	case common.HasAnyFold(condition, "rain"):
		score -= 4
	case common.HasAnyFold(condition, "cloud"):
		score++
	case common.HasAnyFold(condition, "clear"):
		score += 2
	}

	level := int(math.Round(float64(score) / 3))
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

var aqiLevels = map[int]string{
	1: "Good",
	2: "Fair",
	3: "Moderate",
	4: "Poor",
	5: "Very Poor",
}

// AQILevel maps the provider's 1-5 air-quality index to its label.
func AQILevel(aqi int) string {
	if label, ok := aqiLevels[aqi]; ok {
		return label
	}
	return "Unknown"
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection maps a bearing in degrees to a 16-point compass label.
// Values at or past 360 wrap.
func WindDirection(deg int) string {
	idx := int(math.Round(float64(deg)/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}

// Beaufort-like severity ladder. Thresholds are in display units, so the
// metric ladder is km/h and the imperial one mph.
var (
	windSpeedThresholdsMetric   = []float64{1, 12, 29, 39, 50, 62, 75, 89, 103, 118}
	windSpeedThresholdsImperial = []float64{1, 7, 18, 24, 31, 39, 47, 55, 64, 73}

	windDescriptions = []string{
		"Calm", "Light Air", "Light Breeze", "Gentle Breeze",
		"Moderate Breeze", "Fresh Breeze", "Strong Breeze",
		"Near Gale", "Gale", "Strong Gale", "Storm",
	}
)

// WindDescription picks a severity label for a display-unit wind speed.
func WindDescription(speed float64, units Units) string {
	thresholds := windSpeedThresholdsMetric
	if units == UnitsImperial {
		thresholds = windSpeedThresholdsImperial
	}

	for i, limit := range thresholds {
		if speed < limit {
			return windDescriptions[i]
		}
	}
	return windDescriptions[len(windDescriptions)-1]
}
