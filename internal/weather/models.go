package weather

import "github.com/skyscope/skyscope-server/internal/providers"

// Units selects the unit system requested from the provider.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether u is a supported unit system.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// WeatherSnapshot is the normalized point-in-time conditions for one
// location. Lat/Lon are authoritative from the provider response, not the
// caller's input. WindSpeed and WindGust are always in display units
// (km/h for metric, mph for imperial); WindGust is nil when the provider
// omitted it.
type WeatherSnapshot struct {
	Temperature float64  `json:"temperature"`
	Condition   string   `json:"condition"`
	City        string   `json:"city"`
	District    string   `json:"district,omitempty"`
	Country     string   `json:"country"`
	Humidity    int      `json:"humidity"`
	WindSpeed   float64  `json:"windSpeed"`
	FeelsLike   float64  `json:"feelsLike"`
	Visibility  int      `json:"visibility"`
	Pressure    int      `json:"pressure"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Sunrise     int64    `json:"sunrise"`
	Sunset      int64    `json:"sunset"`
	WindDeg     int      `json:"windDeg"`
	WindGust    *float64 `json:"windGust,omitempty"`
	Dt          int64    `json:"dt"`
}

// Key returns a canonical string for indexing this snapshot's location.
func (s WeatherSnapshot) Key() string {
	return LocationKey(s.City, s.Country)
}

// LocationKey builds the canonical store key for a city/country pair.
func LocationKey(city, country string) string {
	return city + ":" + country
}

// DailyForecastEntry is one of up to five per-day forecast summaries.
type DailyForecastEntry struct {
	Day         string  `json:"day"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
}

// TemperatureTrendEntry is a per-day high/low pair for the trend chart.
type TemperatureTrendEntry struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	High int    `json:"high"`
	Low  int    `json:"low"`
}

// HourlySample is a raw 3-hour-cadence forecast point; the "hourly" series
// is the first eight of these (~24 hours), not resampled data.
type HourlySample struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
}

// PrecipitationEntry pairs a probability percentage with an expected
// accumulation in mm for one 3-hour window.
type PrecipitationEntry struct {
	Time        string  `json:"time"`
	Probability int     `json:"probability"`
	Amount      float64 `json:"amount"`
}

// AirQualitySnapshot is the provider's 1-5 AQI plus pollutant components.
type AirQualitySnapshot struct {
	AQI        int                     `json:"aqi"`
	Components providers.AirComponents `json:"components"`
}

// DerivedMetrics are display values computed from the snapshot rather
// than fetched: lunar state for the observation time, an estimated
// pollen level, the air-quality label, and wind direction/severity.
// AQILabel is empty when no air-quality data was available.
type DerivedMetrics struct {
	MoonPhase        float64 `json:"moonPhase"`
	MoonPhaseName    string  `json:"moonPhaseName"`
	MoonIllumination int     `json:"moonIllumination"`
	PollenLevel      int     `json:"pollenLevel"`
	AQILabel         string  `json:"aqiLabel,omitempty"`
	WindDirection    string  `json:"windDirection"`
	WindDescription  string  `json:"windDescription"`
}

// Bundle is everything one fetch cycle produces for a location.
type Bundle struct {
	Weather          WeatherSnapshot         `json:"weather"`
	Forecast         []DailyForecastEntry    `json:"forecast"`
	HourlyForecast   []HourlySample          `json:"hourlyForecast"`
	TemperatureTrend []TemperatureTrendEntry `json:"temperatureTrend"`
	Precipitation    []PrecipitationEntry    `json:"precipitationData"`
	UVIndex          float64                 `json:"uvIndex"`
	AirQuality       *AirQualitySnapshot     `json:"airQuality"`
	Derived          DerivedMetrics          `json:"derived"`
	Alerts           []providers.Alert       `json:"weatherAlerts"`
}
