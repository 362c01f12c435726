package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsPgUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isPgUniqueViolation(unique) {
		t.Fatalf("expected unique violation")
	}
	if !isPgUniqueViolation(fmt.Errorf("wrapped: %w", unique)) {
		t.Fatalf("expected wrapped unique violation")
	}
	if isPgUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isPgUniqueViolation(errors.New("boom")) || isPgUniqueViolation(nil) {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestIsSQLiteUniqueViolation(t *testing.T) {
	if !isSQLiteUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")) {
		t.Fatalf("expected unique violation")
	}
	if isSQLiteUniqueViolation(errors.New("FOREIGN KEY constraint failed")) || isSQLiteUniqueViolation(nil) {
		t.Fatalf("unexpected unique violation")
	}
}
