package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("lib/pq error", func(t *testing.T) {
		err := fmt.Errorf("insert pass: %w", &pq.Error{Code: "23505", Constraint: "qr_visitors_qr_code_key"})
		assert.True(t, IsUniqueViolation(err))
		assert.Equal(t, "qr_visitors_qr_code_key", ConstraintName(err))
	})

	t.Run("pgx error", func(t *testing.T) {
		err := fmt.Errorf("insert pass: %w", &pgconn.PgError{Code: "23505", ConstraintName: "qr_visitors_qr_code_key"})
		assert.True(t, IsUniqueViolation(err))
		assert.Equal(t, "qr_visitors_qr_code_key", ConstraintName(err))
	})

	t.Run("other errors", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(nil))
		assert.False(t, IsUniqueViolation(errors.New("boom")))
		assert.False(t, IsUniqueViolation(&pq.Error{Code: "40001"}))
		assert.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	})
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := fmt.Errorf("check in guard: %w", &pq.Error{Code: "23503", Constraint: "guard_attendance_guard_id_fkey"})
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}
