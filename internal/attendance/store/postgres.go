package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gatehouse/internal/attendance/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/dberr"
	"gatehouse/pkg/platform/sentinel"
	txcontext "gatehouse/pkg/platform/tx"
)

// PostgresStore persists the guard_attendance ledger.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

const recordColumns = `id, guard_id, attendance_date, check_in_time, check_out_time`

// UpsertCheckIn writes today's check-in in one statement; concurrent calls
// for the same guard and day converge on a single row.
func (s *PostgresStore) UpsertCheckIn(ctx context.Context, guardID id.GuardID, day id.Date, now time.Time) (*models.Record, error) {
	query := `
		INSERT INTO guard_attendance (guard_id, attendance_date, check_in_time)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (guard_id, attendance_date)
		DO UPDATE SET check_in_time = EXCLUDED.check_in_time
		RETURNING ` + recordColumns
	r, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, int64(guardID), day, now))
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("upsert guard check-in: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) Execute(ctx context.Context, guardID id.GuardID, day id.Date, validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {
	var result *models.Record
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		query := `SELECT ` + recordColumns + ` FROM guard_attendance
			WHERE guard_id = $1 AND attendance_date = $2::date FOR UPDATE`
		r, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, int64(guardID), day))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock attendance: %w", err)
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)

		if _, err := s.execer(ctx).ExecContext(ctx,
			`UPDATE guard_attendance SET check_in_time = $2, check_out_time = $3 WHERE id = $1`,
			int64(r.ID), r.CheckInTime, r.CheckOutTime,
		); err != nil {
			return fmt.Errorf("update attendance: %w", err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) ListByDate(ctx context.Context, day id.Date) ([]*models.Record, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+recordColumns+` FROM guard_attendance WHERE attendance_date = $1::date ORDER BY guard_id`, day)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return out, nil
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		r        models.Record
		rawID    int64
		guardID  int64
		checkIn  sql.NullTime
		checkOut sql.NullTime
	)
	if err := row.Scan(&rawID, &guardID, &r.AttendanceDate, &checkIn, &checkOut); err != nil {
		return nil, err
	}
	r.ID = id.AttendanceID(rawID)
	r.GuardID = id.GuardID(guardID)
	r.CheckInTime = nullTime(checkIn)
	r.CheckOutTime = nullTime(checkOut)
	return &r, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
