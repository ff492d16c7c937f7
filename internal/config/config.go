package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string

	// Upstream base URLs; overridable for tests and self-hosted mirrors.
	OpenWeatherBaseURL string
	NominatimBaseURL   string

	// Geocoding request identity (Nominatim usage policy requires a
	// descriptive User-Agent) and the preferred response language.
	UserAgent       string
	GeocodeLanguage string

	// DefaultCountry is the country code assumed when geocoding returns
	// none. Deployment policy, not a geocoding universal.
	DefaultCountry string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// DatabaseURL is the favorites store DSN. Empty disables favorites
	// and the dashboard refresh job.
	DatabaseURL string

	// RefreshInterval controls how often favorited locations are refreshed.
	RefreshInterval time.Duration

	// In-memory dashboard store retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}

	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	cfg.NominatimBaseURL = getenvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")

	cfg.UserAgent = getenvDefault("GEOCODE_USER_AGENT", "SkyScope Weather (https://skycast-now.vercel.app)")
	cfg.GeocodeLanguage = getenvDefault("GEOCODE_LANG", "vi")
	cfg.DefaultCountry = getenvDefault("DEFAULT_COUNTRY", "VN")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	refresh, err := getenvDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = refresh

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)

	maxAge, err := getenvDuration("STORE_MAX_AGE", "24h")
	if err != nil {
		return nil, err
	}
	cfg.StoreMaxAge = maxAge

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	s := getenvDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
