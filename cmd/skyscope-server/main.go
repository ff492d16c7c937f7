package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/skyscope/skyscope-server/internal/api/http"
	"github.com/skyscope/skyscope-server/internal/config"
	"github.com/skyscope/skyscope-server/internal/favorites"
	"github.com/skyscope/skyscope-server/internal/providers"
	"github.com/skyscope/skyscope-server/internal/scheduler"
	"github.com/skyscope/skyscope-server/internal/store"
	"github.com/skyscope/skyscope-server/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	openWeather := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey)
	nominatim := providers.NewNominatimClient(httpClient, cfg.NominatimBaseURL, cfg.UserAgent, cfg.GeocodeLanguage, cfg.DefaultCountry)

	service := weather.NewService(openWeather, nominatim)

	// Favorites and the dashboard refresh are optional; both need the DB.
	var favStore *favorites.Store
	var snapStore *store.MemoryStore
	var sched *scheduler.Scheduler

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		favStore, err = favorites.New(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("failed to open favorites store: %v", err)
		}
		defer favStore.Close()

		snapStore = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

		sched = scheduler.New(favStore, service, snapStore, cfg.RefreshInterval)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	} else {
		log.Printf("INFO: DATABASE_URL not set; favorites and dashboard disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:               "skyscope-server",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skyscope-server",
		})
	})

	// The nil interface dance: a nil *favorites.Store must stay a nil
	// interface so handlers can detect the disabled state.
	var favAPI httpapi.FavoritesStore
	var snapAPI httpapi.SnapshotReader
	if favStore != nil {
		favAPI = favStore
		snapAPI = snapStore
	}
	httpapi.RegisterRoutes(app, service, favAPI, snapAPI)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
