package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatehouse/internal/visit/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
	txcontext "gatehouse/pkg/platform/tx"
)

// PostgresStore persists visitor requests in the visitors table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed visit store.
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

const visitColumns = `id, visitor_name, flat_no, relation, purpose, visit_date,
	arrived_at, check_in_time, check_out_time, status, created_by_resident, created_at`

func (s *PostgresStore) Create(ctx context.Context, v *models.VisitRequest) error {
	query := `
		INSERT INTO visitors (
			visitor_name, flat_no, relation, purpose, visit_date,
			arrived_at, check_in_time, check_out_time, status, created_by_resident, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var newID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		v.VisitorName,
		v.FlatNo,
		v.Relation,
		v.Purpose,
		v.VisitDate,
		v.ArrivedAt,
		v.CheckInTime,
		v.CheckOutTime,
		string(v.Status),
		v.CreatedByResident,
		v.CreatedAt,
	).Scan(&newID)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	v.ID = id.VisitID(newID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error) {
	query := `SELECT ` + visitColumns + ` FROM visitors WHERE id = $1`
	v, err := scanVisit(s.execer(ctx).QueryRowContext(ctx, query, int64(visitID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visit by id: %w", err)
	}
	return v, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, runs validate and mutate,
// and writes the mutable columns back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, visitID id.VisitID, validate func(*models.VisitRequest) error, mutate func(*models.VisitRequest)) (*models.VisitRequest, error) {
	var result *models.VisitRequest
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		query := `SELECT ` + visitColumns + ` FROM visitors WHERE id = $1 FOR UPDATE`
		v, err := scanVisit(s.execer(ctx).QueryRowContext(ctx, query, int64(visitID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock visit: %w", err)
		}
		if err := validate(v); err != nil {
			return err
		}
		mutate(v)

		update := `
			UPDATE visitors
			SET visit_date = $2, check_in_time = $3, check_out_time = $4, status = $5
			WHERE id = $1
		`
		if _, err := s.execer(ctx).ExecContext(ctx, update,
			int64(v.ID), v.VisitDate, v.CheckInTime, v.CheckOutTime, string(v.Status),
		); err != nil {
			return fmt.Errorf("update visit: %w", err)
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns matching requests ordered by id.
func (s *PostgresStore) List(ctx context.Context, q models.Query) ([]*models.VisitRequest, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.FlatNo != "" {
		conds = append(conds, "flat_no = "+arg(q.FlatNo))
	}
	if q.Status != "" {
		conds = append(conds, "status = "+arg(string(q.Status)))
	}
	if q.CreatedByResident != nil {
		conds = append(conds, "created_by_resident = "+arg(*q.CreatedByResident))
	}
	if q.Date != nil {
		cond := "visit_date = " + arg(*q.Date) + "::date"
		if q.IncludeUndated {
			cond = "(" + cond + " OR visit_date IS NULL)"
		}
		conds = append(conds, cond)
	}

	query := `SELECT ` + visitColumns + ` FROM visitors`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	out := make([]*models.VisitRequest, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (*models.VisitRequest, error) {
	var (
		v         models.VisitRequest
		rawID     int64
		visitDate id.Date
		status    string
		arrivedAt sql.NullTime
		checkIn   sql.NullTime
		checkOut  sql.NullTime
	)
	if err := row.Scan(&rawID, &v.VisitorName, &v.FlatNo, &v.Relation, &v.Purpose, &visitDate,
		&arrivedAt, &checkIn, &checkOut, &status, &v.CreatedByResident, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.ID = id.VisitID(rawID)
	v.VisitDate = id.DatePtr(visitDate)
	v.Status = models.Status(status)
	v.ArrivedAt = nullTime(arrivedAt)
	v.CheckInTime = nullTime(checkIn)
	v.CheckOutTime = nullTime(checkOut)
	return &v, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
