package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
)

// Location is a resolved (city, district, country) triple. District may be
// empty; Country is an ISO-like code or a country name.
type Location struct {
	City     string `json:"city"`
	District string `json:"district,omitempty"`
	Country  string `json:"country"`
}

// nominatimAddress is the heterogeneous address block Nominatim returns.
// Which fields are populated depends on the place type and region.
type nominatimAddress struct {
	Suburb        string `json:"suburb"`
	CityDistrict  string `json:"city_district"`
	District      string `json:"district"`
	Quarter       string `json:"quarter"`
	Neighbourhood string `json:"neighbourhood"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Municipality  string `json:"municipality"`
	County        string `json:"county"`
	State         string `json:"state"`
	Province      string `json:"province"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

type reverseResponse struct {
	Address *nominatimAddress `json:"address"`
}

type searchResult struct {
	Lat     string            `json:"lat"`
	Lon     string            `json:"lon"`
	Name    string            `json:"name"`
	Address *nominatimAddress `json:"address"`
}

// ForwardResult is a successful forward-geocode hit.
type ForwardResult struct {
	Lat      float64
	Lon      float64
	Location Location
}

// NominatimClient talks to a Nominatim geocoding instance. Every request
// carries the configured User-Agent and Accept-Language headers.
type NominatimClient struct {
	baseURL        string
	defaultCountry string
	call           *caller
}

func NewNominatimClient(client *http.Client, baseURL, userAgent, language, defaultCountry string) *NominatimClient {
	return &NominatimClient{
		baseURL:        baseURL,
		defaultCountry: defaultCountry,
		call: newCaller("nominatim", client, map[string]string{
			"User-Agent":      userAgent,
			"Accept-Language": language,
		}),
	}
}

// Reverse resolves coordinates into a best-effort location. Location
// labelling is non-critical, so every failure is absorbed into the
// {Unknown, default country} fallback instead of propagating.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) Location {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("zoom", "14")
	values.Set("addressdetails", "1")

	var payload reverseResponse
	u := fmt.Sprintf("%s/reverse?%s", c.baseURL, values.Encode())
	if err := c.call.getJSON(ctx, u, &payload); err != nil {
		log.Printf("reverse geocoding failed for %.4f,%.4f: %v", lat, lon, err)
		return Location{City: "Unknown", Country: c.defaultCountry}
	}

	if payload.Address == nil {
		return Location{City: "Unknown", Country: c.defaultCountry}
	}
	return resolveReverseAddress(payload.Address, c.defaultCountry)
}

// Forward resolves a free-text query to coordinates and a location.
// Returns (nil, nil) when the query matches nothing; transport and
// malformed-response failures are propagated.
func (c *NominatimClient) Forward(ctx context.Context, query string) (*ForwardResult, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("q", query)
	values.Set("limit", "1")
	values.Set("addressdetails", "1")

	var results []searchResult
	u := fmt.Sprintf("%s/search?%s", c.baseURL, values.Encode())
	if err := c.call.getJSON(ctx, u, &results); err != nil {
		return nil, fmt.Errorf("forward geocoding: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	hit := results[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("forward geocoding: bad latitude %q", hit.Lat)
	}
	lon, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("forward geocoding: bad longitude %q", hit.Lon)
	}

	return &ForwardResult{
		Lat:      lat,
		Lon:      lon,
		Location: resolveForward(query, hit.Name, hit.Address, c.defaultCountry),
	}, nil
}
