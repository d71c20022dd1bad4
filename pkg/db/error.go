package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// UniqueViolation reports whether err is a unique-key violation and, when
// the driver exposes it, the name of the violated constraint. SQLite and
// MySQL report no constraint name, so callers fall back to a generic conflict.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return pgErr.ConstraintName, true
	}
	if IsDuplicateKeyErr(err) {
		return "", true
	}
	return "", false
}

// TranslateUnique maps a unique violation to the conflict registered for its
// constraint, or to fallback when the constraint is unknown. Other errors
// pass through unchanged.
func TranslateUnique(err error, byConstraint map[string]error, fallback error) error {
	constraint, ok := UniqueViolation(err)
	if !ok {
		return err
	}
	if mapped, found := byConstraint[constraint]; found {
		return mapped
	}
	return fallback
}
