package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CurrentConditions is the raw OpenWeatherMap current-weather payload.
// Main is a pointer so a missing block is distinguishable from zeroes.
type CurrentConditions struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []ConditionInfo `json:"weather"`
	Main    *MainInfo       `json:"main"`
	Wind    WindInfo        `json:"wind"`
	Sys     struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Visibility int    `json:"visibility"`
	Name       string `json:"name"`
	Dt         int64  `json:"dt"`
}

type ConditionInfo struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type MainInfo struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMax   float64 `json:"temp_max"`
	TempMin   float64 `json:"temp_min"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

// WindInfo carries wind readings in the provider's native units
// (m/s for metric requests, mph for imperial). Gust is nil when the
// provider omitted it; a reported zero gust is a different state.
type WindInfo struct {
	Speed float64  `json:"speed"`
	Deg   int      `json:"deg"`
	Gust  *float64 `json:"gust"`
}

// ForecastSample is one 3-hour-resolution record of the /forecast list.
type ForecastSample struct {
	Dt      int64           `json:"dt"`
	Main    MainInfo        `json:"main"`
	Weather []ConditionInfo `json:"weather"`
	Pop     float64         `json:"pop"`
	Rain    *Accumulation   `json:"rain"`
	Snow    *Accumulation   `json:"snow"`
}

// Condition returns the sample's primary condition label, or "" when the
// weather array is absent.
func (s ForecastSample) Condition() string {
	if len(s.Weather) == 0 {
		return ""
	}
	return s.Weather[0].Main
}

// Accumulation is a rain/snow amount for the sample's 3-hour window, in mm.
type Accumulation struct {
	ThreeH float64 `json:"3h"`
}

type forecastResponse struct {
	List []ForecastSample `json:"list"`
}

// AirPollutionResponse is the raw air-quality payload; List is empty when
// the provider has no data for the coordinates.
type AirPollutionResponse struct {
	List []AirPollutionSample `json:"list"`
}

type AirPollutionSample struct {
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components AirComponents `json:"components"`
}

// AirComponents are pollutant concentrations in µg/m³.
type AirComponents struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

// OneCallResponse carries the subset of the one-call payload this service
// consumes: UV index and weather alerts.
type OneCallResponse struct {
	Current struct {
		UVI float64 `json:"uvi"`
	} `json:"current"`
	Alerts []Alert `json:"alerts"`
}

// Alert is a government weather alert. Start/End are Unix seconds.
type Alert struct {
	Event       string `json:"event"`
	Description string `json:"description"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
}

// OpenWeatherClient talks to the OpenWeatherMap REST API.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	call    *caller
}

func NewOpenWeatherClient(client *http.Client, baseURL, apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		call:    newCaller("openweather", client, nil),
	}
}

func (c *OpenWeatherClient) endpoint(path string, lat, lon float64, extra url.Values) string {
	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())
}

// Current fetches current conditions. Units is "metric" or "imperial".
func (c *OpenWeatherClient) Current(ctx context.Context, lat, lon float64, units string) (*CurrentConditions, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	var payload CurrentConditions
	u := c.endpoint("/weather", lat, lon, url.Values{"units": {units}})
	if err := c.call.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("current conditions: %w", err)
	}
	return &payload, nil
}

// Forecast fetches the 3-hourly forecast list (typically 40 samples / 5 days).
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64, units string) ([]ForecastSample, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	var payload forecastResponse
	u := c.endpoint("/forecast", lat, lon, url.Values{"units": {units}})
	if err := c.call.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return payload.List, nil
}

// AirPollution fetches the air-quality index and pollutant components.
func (c *OpenWeatherClient) AirPollution(ctx context.Context, lat, lon float64) (*AirPollutionResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	var payload AirPollutionResponse
	u := c.endpoint("/air_pollution", lat, lon, nil)
	if err := c.call.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("air pollution: %w", err)
	}
	return &payload, nil
}

// OneCall fetches UV index and alerts; minutely data is excluded.
func (c *OpenWeatherClient) OneCall(ctx context.Context, lat, lon float64, units string) (*OneCallResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	var payload OneCallResponse
	u := c.endpoint("/onecall", lat, lon, url.Values{"units": {units}, "exclude": {"minutely"}})
	if err := c.call.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("one call: %w", err)
	}
	return &payload, nil
}
