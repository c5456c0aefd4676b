package postgres

import (
	"errors"

	"go-intake-backend/pkg/apperror"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

// psql builds $n placeholders for pgx
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// notFoundOr maps missing rows (and malformed uuid lookups) to NotFound and
// anything else to Internal
func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(message)
	}
	if code, _ := pgCode(err); code == pgInvalidTextRepr {
		return apperror.NotFound(message)
	}
	return apperror.Internal(err)
}
