package weather

import (
	"errors"
	"fmt"

	"github.com/skyscope/skyscope-server/internal/providers"
)

// ErrMalformedResponse marks an upstream payload missing a block this
// service cannot do without.
var ErrMalformedResponse = errors.New("malformed provider response")

// NormalizeCurrentConditions reshapes a raw current-conditions payload into
// a WeatherSnapshot. Wind speed and gust are converted to display units.
// When override is non-nil its city/district/country take precedence over
// the payload's own name and country fields.
func NormalizeCurrentConditions(raw *providers.CurrentConditions, units Units, override *providers.Location) (WeatherSnapshot, error) {
	if raw == nil || raw.Main == nil {
		return WeatherSnapshot{}, fmt.Errorf("%w: missing main block", ErrMalformedResponse)
	}
	if len(raw.Weather) == 0 {
		return WeatherSnapshot{}, fmt.Errorf("%w: missing weather entry", ErrMalformedResponse)
	}

	snap := WeatherSnapshot{
		Temperature: raw.Main.Temp,
		Condition:   raw.Weather[0].Main,
		City:        raw.Name,
		Country:     raw.Sys.Country,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   DisplayWindSpeed(raw.Wind.Speed, units),
		FeelsLike:   raw.Main.FeelsLike,
		Visibility:  raw.Visibility,
		Pressure:    raw.Main.Pressure,
		Lat:         raw.Coord.Lat,
		Lon:         raw.Coord.Lon,
		Sunrise:     raw.Sys.Sunrise,
		Sunset:      raw.Sys.Sunset,
		WindDeg:     raw.Wind.Deg,
		Dt:          raw.Dt,
	}

	if raw.Wind.Gust != nil {
		gust := DisplayWindSpeed(*raw.Wind.Gust, units)
		snap.WindGust = &gust
	}

	if override != nil {
		if override.City != "" {
			snap.City = override.City
		}
		snap.District = override.District
		if override.Country != "" {
			snap.Country = override.Country
		}
	}

	return snap, nil
}
