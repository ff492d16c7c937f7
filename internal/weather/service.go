package weather

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skyscope/skyscope-server/internal/providers"
)

// ErrLocationNotFound is returned by ResolveAndFetch when the free-text
// query matches no place. An expected outcome, not a transport failure.
var ErrLocationNotFound = errors.New("location not found")

// WeatherProvider is the upstream weather API surface the service needs.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64, units string) (*providers.CurrentConditions, error)
	Forecast(ctx context.Context, lat, lon float64, units string) ([]providers.ForecastSample, error)
	AirPollution(ctx context.Context, lat, lon float64) (*providers.AirPollutionResponse, error)
	OneCall(ctx context.Context, lat, lon float64, units string) (*providers.OneCallResponse, error)
}

// Geocoder resolves coordinates and free-text queries to locations.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) providers.Location
	Forward(ctx context.Context, query string) (*providers.ForwardResult, error)
}

// Service orchestrates one fetch cycle: a parallel batch of provider
// requests joined into a Bundle. It holds no state between calls.
type Service struct {
	provider WeatherProvider
	geo      Geocoder
}

func NewService(provider WeatherProvider, geo Geocoder) *Service {
	return &Service{provider: provider, geo: geo}
}

// FetchAll issues the current-conditions, forecast, air-quality and
// one-call requests concurrently, plus a reverse geocode when no location
// override is supplied. Join semantics: the first provider failure aborts
// the whole batch. Reverse-geocode failures never abort; the resolver
// absorbs them into its fallback location.
func (s *Service) FetchAll(ctx context.Context, lat, lon float64, units Units, override *providers.Location) (*Bundle, error) {
	var (
		current  *providers.CurrentConditions
		forecast []providers.ForecastSample
		air      *providers.AirPollutionResponse
		oneCall  *providers.OneCallResponse
		resolved *providers.Location
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		current, err = s.provider.Current(gctx, lat, lon, string(units))
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = s.provider.Forecast(gctx, lat, lon, string(units))
		return err
	})
	g.Go(func() error {
		var err error
		air, err = s.provider.AirPollution(gctx, lat, lon)
		return err
	})
	g.Go(func() error {
		var err error
		oneCall, err = s.provider.OneCall(gctx, lat, lon, string(units))
		return err
	})

	if override == nil {
		g.Go(func() error {
			loc := s.geo.Reverse(gctx, lat, lon)
			resolved = &loc
			return nil
		})
	} else {
		resolved = override
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot, err := NormalizeCurrentConditions(current, units, resolved)
	if err != nil {
		return nil, err
	}

	alerts := oneCall.Alerts
	if alerts == nil {
		// Serialize as an empty list, not null, when the provider has none.
		alerts = []providers.Alert{}
	}

	bundle := &Bundle{
		Weather:          snapshot,
		Forecast:         DailySummaries(forecast),
		HourlyForecast:   HourlySeries(forecast),
		TemperatureTrend: TemperatureTrend(forecast),
		Precipitation:    PrecipitationSeries(forecast),
		UVIndex:          oneCall.Current.UVI,
		Alerts:           alerts,
	}

	if len(air.List) > 0 {
		bundle.AirQuality = &AirQualitySnapshot{
			AQI:        air.List[0].Main.AQI,
			Components: air.List[0].Components,
		}
	}

	bundle.Derived = deriveMetrics(snapshot, bundle.AirQuality, units)

	return bundle, nil
}

// deriveMetrics computes the display metrics for a snapshot: lunar state
// at the observation time, estimated pollen level, air-quality label, and
// wind direction/severity in display units.
func deriveMetrics(snapshot WeatherSnapshot, air *AirQualitySnapshot, units Units) DerivedMetrics {
	phase := MoonPhase(time.Unix(snapshot.Dt, 0))

	d := DerivedMetrics{
		MoonPhase:        phase,
		MoonPhaseName:    MoonPhaseName(phase),
		MoonIllumination: MoonIllumination(phase),
		PollenLevel: EstimatePollenLevel(
			snapshot.Temperature, float64(snapshot.Humidity), snapshot.WindSpeed, snapshot.Condition),
		WindDirection:   WindDirection(snapshot.WindDeg),
		WindDescription: WindDescription(snapshot.WindSpeed, units),
	}

	if air != nil {
		d.AQILabel = AQILevel(air.AQI)
	}
	return d
}

// ResolveAndFetch forward-geocodes a free-text query and fetches the full
// bundle for the hit, passing the resolved location through as the
// snapshot's label override.
func (s *Service) ResolveAndFetch(ctx context.Context, query string, units Units) (*Bundle, error) {
	result, err := s.geo.Forward(ctx, query)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrLocationNotFound
	}

	log.Printf("DEBUG: resolved %q to %s (%.4f,%.4f)", query, result.Location.City, result.Lat, result.Lon)

	return s.FetchAll(ctx, result.Lat, result.Lon, units, &result.Location)
}
