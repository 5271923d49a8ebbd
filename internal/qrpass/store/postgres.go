package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gatehouse/internal/qrpass/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/dberr"
	"gatehouse/pkg/platform/sentinel"
	txcontext "gatehouse/pkg/platform/tx"
)

// PostgresStore persists passes in the qr_visitors table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed pass store.
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

const passColumns = `id, visitor_name, purpose, visit_date, relation, flat_no, qr_code,
	status, check_in_time, check_out_time, created_at, created_by_resident`

// Create inserts p. A duplicate qr_code returns sentinel.ErrConflict so the
// caller can mint a fresh code.
func (s *PostgresStore) Create(ctx context.Context, p *models.Pass) error {
	query := `
		INSERT INTO qr_visitors (
			visitor_name, purpose, visit_date, relation, flat_no, qr_code,
			status, check_in_time, check_out_time, created_at, created_by_resident
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var newID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		p.VisitorName,
		p.Purpose,
		p.VisitDate,
		p.Relation,
		p.FlatNo,
		p.QRCode,
		string(p.Status),
		p.CheckInTime,
		p.CheckOutTime,
		p.CreatedAt,
		p.CreatedByResident,
	).Scan(&newID)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert qr pass: %w", err)
	}
	p.ID = id.PassID(newID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, passID id.PassID) (*models.Pass, error) {
	return s.findOne(ctx, `SELECT `+passColumns+` FROM qr_visitors WHERE id = $1`, int64(passID))
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Pass, error) {
	return s.findOne(ctx, `SELECT `+passColumns+` FROM qr_visitors WHERE qr_code = $1`, code)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Pass, error) {
	p, err := scanPass(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find qr pass: %w", err)
	}
	return p, nil
}

// Execute locks the pass row for the duration of validate and mutate.
func (s *PostgresStore) Execute(ctx context.Context, passID id.PassID, validate func(*models.Pass) error, mutate func(*models.Pass)) (*models.Pass, error) {
	var result *models.Pass
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		query := `SELECT ` + passColumns + ` FROM qr_visitors WHERE id = $1 FOR UPDATE`
		p, err := scanPass(s.execer(ctx).QueryRowContext(ctx, query, int64(passID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock qr pass: %w", err)
		}
		if err := validate(p); err != nil {
			return err
		}
		mutate(p)

		update := `
			UPDATE qr_visitors
			SET status = $2, check_in_time = $3, check_out_time = $4
			WHERE id = $1
		`
		if _, err := s.execer(ctx).ExecContext(ctx, update,
			int64(p.ID), string(p.Status), p.CheckInTime, p.CheckOutTime,
		); err != nil {
			return fmt.Errorf("update qr pass: %w", err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns matching passes, newest first.
func (s *PostgresStore) List(ctx context.Context, q models.Query) ([]*models.Pass, error) {
	var (
		conds []string
		args  []any
	)
	if q.FlatNo != "" {
		args = append(args, q.FlatNo)
		conds = append(conds, fmt.Sprintf("flat_no = $%d", len(args)))
	}
	if q.Date != nil {
		args = append(args, *q.Date)
		conds = append(conds, fmt.Sprintf("visit_date = $%d::date", len(args)))
	}
	query := `SELECT ` + passColumns + ` FROM qr_visitors`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query qr passes: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Pass, 0)
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan qr pass: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qr passes: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPass(row rowScanner) (*models.Pass, error) {
	var (
		p         models.Pass
		rawID     int64
		visitDate id.Date
		status    string
		checkIn   sql.NullTime
		checkOut  sql.NullTime
	)
	if err := row.Scan(&rawID, &p.VisitorName, &p.Purpose, &visitDate, &p.Relation, &p.FlatNo, &p.QRCode,
		&status, &checkIn, &checkOut, &p.CreatedAt, &p.CreatedByResident); err != nil {
		return nil, err
	}
	p.ID = id.PassID(rawID)
	p.VisitDate = id.DatePtr(visitDate)
	p.Status = models.Status(status)
	if checkIn.Valid {
		t := checkIn.Time
		p.CheckInTime = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		p.CheckOutTime = &t
	}
	return &p, nil
}

