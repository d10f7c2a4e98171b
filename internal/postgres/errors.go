package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/laraib28/todo-web/internal/domain"
)

// Postgres error codes this layer translates into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeInvalidTextRepr     = "22P02"
)

// translateConstraint converts constraint violations into domain errors so
// handlers can map them to 409/422 without importing pgx. Other errors pass
// through unchanged.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return &domain.ConflictError{Detail: pgErr.ConstraintName}
	case codeCheckViolation:
		return &domain.ValidationError{Field: pgErr.ConstraintName, Reason: "check constraint violated"}
	case codeForeignKeyViolation:
		return &domain.ValidationError{Field: pgErr.ConstraintName, Reason: "referenced row does not exist"}
	case codeNotNullViolation:
		return &domain.ValidationError{Field: pgErr.ColumnName, Reason: "must not be null"}
	case codeInvalidTextRepr:
		return &domain.ValidationError{Field: "", Reason: "malformed value"}
	}
	return err
}
