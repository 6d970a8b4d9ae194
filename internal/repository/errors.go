package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateEmail is returned when an email is already registered for any role.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrOwnerNotFound is returned when a request references a missing user.
	ErrOwnerNotFound = errors.New("request owner not found")
	// ErrInvalidRole is returned when a user is created with an unknown role.
	ErrInvalidRole = errors.New("invalid user role")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
