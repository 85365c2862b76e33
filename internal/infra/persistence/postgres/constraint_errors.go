package postgres

import (
	"sso/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgErrorCode(err) == pgForeignKeyViolation
}

func isNotNullConstraintViolation(err error) bool {
	return pgErrorCode(err) == pgNotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated) || pgErrorCode(err) == pgCheckViolation
}

// translateWriteError converts integrity violations into a database error with a readable detail.
func translateWriteError(err error, operation string) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainDatabaseError(err, operation+": duplicate key")
	case isForeignKeyConstraintViolation(err):
		return domainDatabaseError(err, operation+": invalid reference")
	case isNotNullConstraintViolation(err):
		return domainDatabaseError(err, operation+": missing required value")
	case isCheckConstraintViolation(err):
		return domainDatabaseError(err, operation+": check constraint violated")
	default:
		return domainDatabaseError(err, operation)
	}
}
