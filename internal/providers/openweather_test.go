package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenWeather(t *testing.T, handler http.HandlerFunc) *OpenWeatherClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewOpenWeatherClient(testHTTPClient(), srv.URL, "test-key")
	c.call.backoff.MaxRetries = 0
	return c
}

func TestOpenWeatherCurrent(t *testing.T) {
	c := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("appid") != "test-key" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(`{
			"coord": {"lat": 10.82, "lon": 106.63},
			"weather": [{"main": "Clouds", "description": "scattered clouds"}],
			"main": {"temp": 31.2, "feels_like": 36.0, "temp_max": 32.0, "temp_min": 29.5, "humidity": 65, "pressure": 1009},
			"wind": {"speed": 4.1, "deg": 140},
			"sys": {"country": "VN", "sunrise": 1700000000, "sunset": 1700042000},
			"visibility": 10000,
			"name": "Ho Chi Minh City",
			"dt": 1700020000
		}`))
	})

	got, err := c.Current(context.Background(), 10.82, 106.63, "metric")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Main == nil || got.Main.Temp != 31.2 {
		t.Errorf("unexpected main block: %+v", got.Main)
	}
	if got.Wind.Gust != nil {
		t.Errorf("expected nil gust when omitted, got %v", *got.Wind.Gust)
	}
	if got.Name != "Ho Chi Minh City" || got.Sys.Country != "VN" {
		t.Errorf("unexpected identity fields: %q %q", got.Name, got.Sys.Country)
	}
}

func TestOpenWeatherForecast(t *testing.T) {
	c := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"list": [
			{"dt": 1700020000, "main": {"temp": 30.0}, "weather": [{"main": "Rain"}], "pop": 0.8, "rain": {"3h": 2.5}},
			{"dt": 1700030800, "main": {"temp": 28.5}, "weather": [], "pop": 0.1}
		]}`))
	})

	list, err := c.Forecast(context.Background(), 10.82, 106.63, "metric")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(list))
	}
	if list[0].Rain == nil || list[0].Rain.ThreeH != 2.5 {
		t.Errorf("rain accumulation not decoded: %+v", list[0].Rain)
	}
	if got := list[0].Condition(); got != "Rain" {
		t.Errorf("Condition() = %q, want Rain", got)
	}
	if got := list[1].Condition(); got != "" {
		t.Errorf("Condition() on empty weather = %q, want empty", got)
	}
}

func TestOpenWeatherAirPollution(t *testing.T) {
	c := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/air_pollution" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"list": [{"main": {"aqi": 3}, "components": {"co": 500.7, "no2": 15.4, "o3": 68.7, "pm2_5": 22.0, "pm10": 27.5}}]}`))
	})

	got, err := c.AirPollution(context.Background(), 10.82, 106.63)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.List) != 1 || got.List[0].Main.AQI != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.List[0].Components.PM25 != 22.0 {
		t.Errorf("pm2_5 not decoded: %+v", got.List[0].Components)
	}
}

func TestOpenWeatherOneCall(t *testing.T) {
	c := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/onecall" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("exclude"); got != "minutely" {
			t.Errorf("expected exclude=minutely, got %q", got)
		}
		w.Write([]byte(`{
			"current": {"uvi": 8.4},
			"alerts": [{"event": "Heat Advisory", "description": "High temperatures expected.", "start": 1700000000, "end": 1700086400}]
		}`))
	})

	got, err := c.OneCall(context.Background(), 10.82, 106.63, "metric")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Current.UVI != 8.4 {
		t.Errorf("uvi = %v, want 8.4", got.Current.UVI)
	}
	if len(got.Alerts) != 1 || got.Alerts[0].Event != "Heat Advisory" {
		t.Errorf("alerts not decoded: %+v", got.Alerts)
	}
}

func TestOpenWeatherMissingAPIKey(t *testing.T) {
	c := NewOpenWeatherClient(testHTTPClient(), "http://unused", "")
	if _, err := c.Current(context.Background(), 0, 0, "metric"); err == nil {
		t.Fatal("expected an error without an api key")
	}
}

func TestCallerRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	call := newCaller("test", testHTTPClient(), nil)
	call.backoff.InitialInterval = 1 // keep the test fast
	call.backoff.MaxInterval = 1

	var out struct {
		OK bool `json:"ok"`
	}
	if err := call.getJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || !out.OK {
		t.Errorf("expected success on third attempt, calls=%d out=%+v", calls, out)
	}
}
