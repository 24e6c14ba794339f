package rdb

import (
	"strings"

	domainerrors "warbler/internal/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes for integrity constraint violations.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// Helper functions for constraint error checking. TranslateError covers the common cases;
// the driver errors below are what the dialectors leave untranslated.
func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || hasPgCode(err, pgUniqueViolation)
}

func isForeignKeyConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || hasPgCode(err, pgForeignKeyViolation) {
		return true
	}

	sqliteErr, ok := asSQLiteConstraint(err)
	if !ok {
		return false
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return true
	case sqlite3.ErrConstraintTrigger:
		// Parent-row deletes blocked by a child reference surface as the trigger code.
		return strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
	default:
		return false
	}
}

func isNotNullConstraintViolation(err error) bool {
	if hasPgCode(err, pgNotNullViolation) {
		return true
	}

	sqliteErr, ok := asSQLiteConstraint(err)

	return ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintNotNull
}

func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || hasPgCode(err, pgCheckViolation) {
		return true
	}

	sqliteErr, ok := asSQLiteConstraint(err)

	return ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == code
}

func asSQLiteConstraint(err error) (sqlite3.Error, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return sqliteErr, true
	}

	return sqlite3.Error{}, false
}

// isConstraintViolation reports whether err is any integrity constraint failure.
func isConstraintViolation(err error) bool {
	return isUniqueConstraintViolation(err) ||
		isForeignKeyConstraintViolation(err) ||
		isNotNullConstraintViolation(err) ||
		isCheckConstraintViolation(err)
}

// translateWriteError maps a failed insert, update or delete onto the domain error taxonomy.
// Constraint breaches become ErrIntegrityViolation; anything else is a DatabaseExecuteError.
func translateWriteError(err error, action string) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrIntegrityViolation.WrapMessage(action + ": duplicate key")
	case isForeignKeyConstraintViolation(err):
		return domainerrors.ErrIntegrityViolation.WrapMessage(action + ": foreign key reference")
	case isNotNullConstraintViolation(err):
		return domainerrors.ErrIntegrityViolation.WrapMessage(action + ": missing required field")
	case isCheckConstraintViolation(err):
		return domainerrors.ErrIntegrityViolation.WrapMessage(action + ": check constraint")
	default:
		return domainerrors.NewDatabaseExecuteError(err, action)
	}
}
