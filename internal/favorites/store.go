package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicate is returned when a user favorites the same city twice.
	// The favorite_cities table carries a unique constraint on
	// (user_id, city_name, country).
	ErrDuplicate = errors.New("city already in favorites")

	// ErrNotFound is returned when a favorite does not exist for the user.
	ErrNotFound = errors.New("favorite not found")
)

const pgUniqueViolation = "23505"

// Favorite is one saved city row.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	CityName  string    `json:"cityName"`
	Country   string    `json:"country"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists favorite cities in Postgres.
//
// Expected schema:
//
//	CREATE TABLE favorite_cities (
//	    id         uuid PRIMARY KEY,
//	    user_id    text NOT NULL,
//	    city_name  text NOT NULL,
//	    country    text NOT NULL,
//	    lat        double precision NOT NULL,
//	    lon        double precision NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    UNIQUE (user_id, city_name, country)
//	);
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Add inserts a favorite and returns it with its generated id.
func (s *Store) Add(ctx context.Context, userID, cityName, country string, lat, lon float64) (Favorite, error) {
	fav := Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		CityName:  cityName,
		Country:   country,
		Lat:       lat,
		Lon:       lon,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO favorite_cities (id, user_id, city_name, country, lat, lon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		fav.ID, fav.UserID, fav.CityName, fav.Country, fav.Lat, fav.Lon, fav.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Favorite{}, ErrDuplicate
		}
		return Favorite{}, fmt.Errorf("insert favorite: %w", err)
	}
	return fav, nil
}

// ListByUser returns a user's favorites, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, city_name, country, lat, lon, created_at
		 FROM favorite_cities
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var result []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.CityName, &f.Country, &f.Lat, &f.Lon, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// Remove deletes a favorite owned by the user.
func (s *Store) Remove(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM favorite_cities WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DistinctLocations returns one favorite per unique (city, country) pair
// across all users, for the dashboard refresh job.
func (s *Store) DistinctLocations(ctx context.Context) ([]Favorite, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (city_name, country) id, user_id, city_name, country, lat, lon, created_at
		 FROM favorite_cities
		 ORDER BY city_name, country, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct locations: %w", err)
	}
	defer rows.Close()

	var result []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.CityName, &f.Country, &f.Lat, &f.Lon, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
