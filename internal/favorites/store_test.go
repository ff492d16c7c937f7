package favorites

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "favorite_cities_user_id_city_name_country_key"}

	if !isUniqueViolation(unique) {
		t.Error("expected a 23505 error to be recognized")
	}
	if !isUniqueViolation(fmt.Errorf("insert favorite: %w", unique)) {
		t.Error("expected a wrapped 23505 error to be recognized")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("a foreign key violation is not a duplicate")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("a plain error is not a duplicate")
	}
	if isUniqueViolation(nil) {
		t.Error("nil is not a duplicate")
	}
}
