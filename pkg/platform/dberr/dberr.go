// Package dberr classifies driver errors so stores can translate them into
// sentinel errors without caring which Postgres driver is registered.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation = "23505"
	codeForeignKey      = "23503"
	codeSerialization   = "40001"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// either lib/pq or pgx.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKey
}

// IsSerializationFailure reports whether the transaction lost a serialization race.
func IsSerializationFailure(err error) bool {
	return sqlState(err) == codeSerialization
}

// ConstraintName returns the violated constraint, if the driver reported one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func sqlState(err error) string {
	if err == nil {
		return ""
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
