package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skyscope/skyscope-server/internal/providers"
)

type stubProvider struct {
	current     *providers.CurrentConditions
	forecast    []providers.ForecastSample
	air         *providers.AirPollutionResponse
	oneCall     *providers.OneCallResponse
	forecastErr error
}

func (s *stubProvider) Current(ctx context.Context, lat, lon float64, units string) (*providers.CurrentConditions, error) {
	return s.current, nil
}

func (s *stubProvider) Forecast(ctx context.Context, lat, lon float64, units string) ([]providers.ForecastSample, error) {
	if s.forecastErr != nil {
		return nil, s.forecastErr
	}
	return s.forecast, nil
}

func (s *stubProvider) AirPollution(ctx context.Context, lat, lon float64) (*providers.AirPollutionResponse, error) {
	return s.air, nil
}

func (s *stubProvider) OneCall(ctx context.Context, lat, lon float64, units string) (*providers.OneCallResponse, error) {
	return s.oneCall, nil
}

type stubGeocoder struct {
	reverse     providers.Location
	reverseHits int
	forward     *providers.ForwardResult
	forwardErr  error
}

func (s *stubGeocoder) Reverse(ctx context.Context, lat, lon float64) providers.Location {
	s.reverseHits++
	return s.reverse
}

func (s *stubGeocoder) Forward(ctx context.Context, query string) (*providers.ForwardResult, error) {
	return s.forward, s.forwardErr
}

func healthyProvider() *stubProvider {
	current := &providers.CurrentConditions{
		Weather: []providers.ConditionInfo{{Main: "Clear"}},
		Main:    &providers.MainInfo{Temp: 28, FeelsLike: 30, Humidity: 70, Pressure: 1010},
		Name:    "HCMC",
	}
	current.Sys.Country = "VN"
	current.Coord.Lat = 10.8
	current.Coord.Lon = 106.6
	current.Wind.Speed = 5 // 18 km/h in display units
	current.Wind.Deg = 90
	current.Dt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix()

	forecast := threeHourly(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 40)

	air := &providers.AirPollutionResponse{
		List: []providers.AirPollutionSample{{Components: providers.AirComponents{PM25: 35.1}}},
	}
	air.List[0].Main.AQI = 3

	oneCall := &providers.OneCallResponse{
		Alerts: []providers.Alert{{Event: "Heat Advisory"}},
	}
	oneCall.Current.UVI = 8.4

	return &stubProvider{current: current, forecast: forecast, air: air, oneCall: oneCall}
}

func TestServiceFetchAll(t *testing.T) {
	t.Run("assembles the full bundle", func(t *testing.T) {
		geo := &stubGeocoder{reverse: providers.Location{City: "Thủ Đức", District: "Linh Xuân", Country: "VN"}}
		svc := NewService(healthyProvider(), geo)

		bundle, err := svc.FetchAll(context.Background(), 10.8, 106.6, UnitsMetric, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if bundle.Weather.City != "Thủ Đức" {
			t.Errorf("expected reverse-geocoded city, got %q", bundle.Weather.City)
		}
		if geo.reverseHits != 1 {
			t.Errorf("expected one reverse-geocode call, got %d", geo.reverseHits)
		}
		if len(bundle.Forecast) != 5 {
			t.Errorf("expected 5 daily entries, got %d", len(bundle.Forecast))
		}
		if len(bundle.HourlyForecast) != 8 || len(bundle.Precipitation) != 8 {
			t.Errorf("expected 8 hourly and precipitation points, got %d and %d",
				len(bundle.HourlyForecast), len(bundle.Precipitation))
		}
		if bundle.UVIndex != 8.4 {
			t.Errorf("expected uv index 8.4, got %v", bundle.UVIndex)
		}
		if bundle.AirQuality == nil || bundle.AirQuality.AQI != 3 {
			t.Errorf("expected air quality aqi 3, got %+v", bundle.AirQuality)
		}
		if len(bundle.Alerts) != 1 || bundle.Alerts[0].Event != "Heat Advisory" {
			t.Errorf("unexpected alerts: %+v", bundle.Alerts)
		}
	})

	t.Run("override skips the reverse geocode", func(t *testing.T) {
		geo := &stubGeocoder{}
		svc := NewService(healthyProvider(), geo)

		override := &providers.Location{City: "Hanoi", Country: "VN"}
		bundle, err := svc.FetchAll(context.Background(), 21.0, 105.8, UnitsMetric, override)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if geo.reverseHits != 0 {
			t.Errorf("expected no reverse-geocode call, got %d", geo.reverseHits)
		}
		if bundle.Weather.City != "Hanoi" {
			t.Errorf("expected override city, got %q", bundle.Weather.City)
		}
	})

	t.Run("one failed request aborts the batch", func(t *testing.T) {
		provider := healthyProvider()
		provider.forecastErr = errors.New("upstream down")
		svc := NewService(provider, &stubGeocoder{})

		_, err := svc.FetchAll(context.Background(), 10.8, 106.6, UnitsMetric, nil)
		if err == nil {
			t.Fatal("expected batch failure")
		}
	})

	t.Run("derives display metrics from the snapshot", func(t *testing.T) {
		provider := healthyProvider()
		svc := NewService(provider, &stubGeocoder{reverse: providers.Location{City: "HCMC", Country: "VN"}})

		bundle, err := svc.FetchAll(context.Background(), 10.8, 106.6, UnitsMetric, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		d := bundle.Derived
		wantPhase := MoonPhase(time.Unix(provider.current.Dt, 0))
		if d.MoonPhase != wantPhase {
			t.Errorf("moon phase = %v, want %v", d.MoonPhase, wantPhase)
		}
		if d.MoonPhaseName != MoonPhaseName(wantPhase) || d.MoonIllumination != MoonIllumination(wantPhase) {
			t.Errorf("lunar fields inconsistent with phase: %+v", d)
		}
		// 28°C (4) + 70% humidity (1) + 18 km/h wind (2) + clear (+2) = 9 -> 3.
		if d.PollenLevel != 3 {
			t.Errorf("pollen level = %d, want 3", d.PollenLevel)
		}
		if d.AQILabel != "Moderate" {
			t.Errorf("aqi label = %q, want Moderate", d.AQILabel)
		}
		if d.WindDirection != "E" {
			t.Errorf("wind direction = %q, want E", d.WindDirection)
		}
		if d.WindDescription != "Light Breeze" {
			t.Errorf("wind description = %q, want Light Breeze", d.WindDescription)
		}
	})

	t.Run("missing air quality leaves the label empty", func(t *testing.T) {
		provider := healthyProvider()
		provider.air = &providers.AirPollutionResponse{}
		svc := NewService(provider, &stubGeocoder{})

		bundle, err := svc.FetchAll(context.Background(), 10.8, 106.6, UnitsMetric, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bundle.Derived.AQILabel != "" {
			t.Errorf("expected empty aqi label, got %q", bundle.Derived.AQILabel)
		}
	})

	t.Run("omitted alerts serialize as an empty list", func(t *testing.T) {
		provider := healthyProvider()
		provider.oneCall = &providers.OneCallResponse{}
		svc := NewService(provider, &stubGeocoder{})

		bundle, err := svc.FetchAll(context.Background(), 10.8, 106.6, UnitsMetric, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bundle.Alerts == nil {
			t.Fatal("expected a non-nil alerts slice")
		}
		if len(bundle.Alerts) != 0 {
			t.Errorf("expected no alerts, got %+v", bundle.Alerts)
		}
	})

	t.Run("empty air quality list yields nil snapshot", func(t *testing.T) {
		provider := healthyProvider()
		provider.air = &providers.AirPollutionResponse{}
		svc := NewService(provider, &stubGeocoder{})

		bundle, err := svc.FetchAll(context.Background(), 10.8, 106.6, UnitsMetric, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bundle.AirQuality != nil {
			t.Errorf("expected nil air quality, got %+v", bundle.AirQuality)
		}
	})
}

func TestServiceResolveAndFetch(t *testing.T) {
	t.Run("zero geocoding results is a distinct not-found", func(t *testing.T) {
		svc := NewService(healthyProvider(), &stubGeocoder{})

		_, err := svc.ResolveAndFetch(context.Background(), "nowhere at all", UnitsMetric)
		if !errors.Is(err, ErrLocationNotFound) {
			t.Fatalf("expected ErrLocationNotFound, got %v", err)
		}
	})

	t.Run("geocoder failure propagates", func(t *testing.T) {
		geo := &stubGeocoder{forwardErr: errors.New("nominatim unreachable")}
		svc := NewService(healthyProvider(), geo)

		_, err := svc.ResolveAndFetch(context.Background(), "Hanoi", UnitsMetric)
		if err == nil || errors.Is(err, ErrLocationNotFound) {
			t.Fatalf("expected transport error, got %v", err)
		}
	})

	t.Run("resolved location labels the snapshot", func(t *testing.T) {
		geo := &stubGeocoder{forward: &providers.ForwardResult{
			Lat: 10.77,
			Lon: 106.7,
			Location: providers.Location{
				City:     "Ho Chi Minh City",
				District: "District 1",
				Country:  "VN",
			},
		}}
		svc := NewService(healthyProvider(), geo)

		bundle, err := svc.ResolveAndFetch(context.Background(), "District 1, Ho Chi Minh City", UnitsMetric)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bundle.Weather.District != "District 1" || bundle.Weather.City != "Ho Chi Minh City" {
			t.Errorf("resolved labels not applied: %q %q", bundle.Weather.District, bundle.Weather.City)
		}
	})
}
