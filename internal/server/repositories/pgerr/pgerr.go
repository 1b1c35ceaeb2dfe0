// Package pgerr classifies Postgres errors returned through pgx.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	invalidTextRepr     = "22P02"
)

func code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a duplicate key.
func IsUniqueViolation(err error) bool { return code(err) == uniqueViolation }

// IsForeignKeyViolation reports a reference to a missing row.
func IsForeignKeyViolation(err error) bool { return code(err) == foreignKeyViolation }

// IsInvalidID reports a value that does not parse as the column type,
// which for our UUID keys means the caller sent a malformed ID.
func IsInvalidID(err error) bool { return code(err) == invalidTextRepr }
