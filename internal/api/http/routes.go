package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/skyscope/skyscope-server/internal/favorites"
	"github.com/skyscope/skyscope-server/internal/providers"
	"github.com/skyscope/skyscope-server/internal/store"
	"github.com/skyscope/skyscope-server/internal/weather"
)

var validate = validator.New()

// WeatherService is the fetch surface the handlers call.
type WeatherService interface {
	FetchAll(ctx context.Context, lat, lon float64, units weather.Units, override *providers.Location) (*weather.Bundle, error)
	ResolveAndFetch(ctx context.Context, query string, units weather.Units) (*weather.Bundle, error)
}

// FavoritesStore is the favorites persistence surface.
type FavoritesStore interface {
	Add(ctx context.Context, userID, cityName, country string, lat, lon float64) (favorites.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]favorites.Favorite, error)
	Remove(ctx context.Context, id uuid.UUID, userID string) error
}

// SnapshotReader serves the dashboard's refreshed snapshots.
type SnapshotReader interface {
	Latest(city, country string) (store.StoredSnapshot, error)
	Range(city, country string, from, to time.Time) ([]store.StoredSnapshot, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Favorites and
// dashboard routes answer 503 when the store was not configured.
func RegisterRoutes(app *fiber.App, svc WeatherService, favs FavoritesStore, snapshots SnapshotReader) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		bundle, err := svc.FetchAll(c.Context(), req.Lat, req.Lon, weather.Units(req.Units), req.override())
		if err != nil {
			if errors.Is(err, weather.ErrMalformedResponse) {
				return fiber.NewError(fiber.StatusBadGateway, "weather provider returned a malformed response")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}

		return c.JSON(bundle)
	})

	v1.Get("/weather/search", func(c *fiber.Ctx) error {
		var req searchQuery
		req.Query = c.Query("q")
		req.Units = unitsOrDefault(c)

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		bundle, err := svc.ResolveAndFetch(c.Context(), req.Query, weather.Units(req.Units))
		if err != nil {
			if errors.Is(err, weather.ErrLocationNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no location matches the query")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}

		return c.JSON(bundle)
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		if favs == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "favorites store is not configured")
		}

		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id query parameter is required")
		}

		list, err := favs.ListByUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list favorites")
		}
		return c.JSON(fiber.Map{"favorites": list})
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		if favs == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "favorites store is not configured")
		}

		var req addFavoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fav, err := favs.Add(c.Context(), req.UserID, req.CityName, req.Country, req.Lat, req.Lon)
		if err != nil {
			if errors.Is(err, favorites.ErrDuplicate) {
				return fiber.NewError(fiber.StatusConflict, "city already in favorites")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to add favorite")
		}
		return c.Status(fiber.StatusCreated).JSON(fav)
	})

	v1.Delete("/favorites/:id", func(c *fiber.Ctx) error {
		if favs == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "favorites store is not configured")
		}

		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid favorite id")
		}
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id query parameter is required")
		}

		if err := favs.Remove(c.Context(), id, userID); err != nil {
			if errors.Is(err, favorites.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "favorite not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove favorite")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		if favs == nil || snapshots == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "dashboard is not configured")
		}

		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id query parameter is required")
		}

		list, err := favs.ListByUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list favorites")
		}

		cities := make([]fiber.Map, 0, len(list))
		for _, fav := range list {
			entry := fiber.Map{"favorite": fav}
			if snap, err := snapshots.Latest(fav.CityName, fav.Country); err == nil {
				entry["current"] = snap
			}
			cities = append(cities, entry)
		}
		return c.JSON(fiber.Map{"cities": cities})
	})

	v1.Get("/dashboard/history", func(c *fiber.Ctx) error {
		if snapshots == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "dashboard is not configured")
		}

		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := snapshots.Range(req.City, req.Country, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshot history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch snapshot history")
		}

		return c.JSON(fiber.Map{
			"city":      req.City,
			"country":   req.Country,
			"from":      req.From,
			"to":        req.To,
			"snapshots": history,
		})
	})
}

// weatherQuery holds the coordinate fetch parameters plus an optional
// location label override.
type weatherQuery struct {
	Lat   float64 `validate:"min=-90,max=90"`
	Lon   float64 `validate:"min=-180,max=180"`
	Units string  `validate:"oneof=metric imperial"`

	City     string
	District string
	Country  string
}

func (q weatherQuery) override() *providers.Location {
	if q.City == "" && q.District == "" && q.Country == "" {
		return nil
	}
	return &providers.Location{City: q.City, District: q.District, Country: q.Country}
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("lon must be a number")
	}

	q.Lat = lat
	q.Lon = lon
	q.Units = unitsOrDefault(c)
	q.City = c.Query("city")
	q.District = c.Query("district")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

type searchQuery struct {
	Query string `validate:"required"`
	Units string `validate:"oneof=metric imperial"`
}

type addFavoriteRequest struct {
	UserID   string  `json:"user_id" validate:"required"`
	CityName string  `json:"city_name" validate:"required"`
	Country  string  `json:"country" validate:"required"`
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"min=-180,max=180"`
}

// historyQuery holds the parameters for the snapshot history endpoint.
type historyQuery struct {
	City    string    `validate:"required"`
	Country string    `validate:"required"`
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = c.Query("city")
	h.Country = c.Query("country")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

func unitsOrDefault(c *fiber.Ctx) string {
	if u := c.Query("units"); u != "" {
		return u
	}
	return string(weather.UnitsMetric)
}
