package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gatehouse/internal/package/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
	txcontext "gatehouse/pkg/platform/tx"
)

// PostgresStore persists packages in the packages table.
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

const packageColumns = `id, tracking_number, description, sender, resident_name, flat_no,
	status, expected_date, delivered_at, delivery_otp, created_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Package) error {
	query := `
		INSERT INTO packages (
			tracking_number, description, sender, resident_name, flat_no,
			status, expected_date, delivered_at, delivery_otp, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9, $10)
		RETURNING id
	`
	var newID int64
	if err := s.execer(ctx).QueryRowContext(ctx, query,
		p.TrackingNumber,
		p.Description,
		p.Sender,
		p.ResidentName,
		p.FlatNo,
		string(p.Status),
		p.ExpectedDate,
		p.DeliveredAt,
		p.DeliveryOTP,
		p.CreatedAt,
	).Scan(&newID); err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	p.ID = id.PackageID(newID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	p, err := scanPackage(s.execer(ctx).QueryRowContext(ctx, query, int64(packageID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find package: %w", err)
	}
	return p, nil
}

// Execute locks the package row for the duration of validate and mutate, so
// two gate terminals cannot both accept the same OTP.
func (s *PostgresStore) Execute(ctx context.Context, packageID id.PackageID, validate func(*models.Package) error, mutate func(*models.Package)) (*models.Package, error) {
	var result *models.Package
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1 FOR UPDATE`
		p, err := scanPackage(s.execer(ctx).QueryRowContext(ctx, query, int64(packageID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock package: %w", err)
		}
		if err := validate(p); err != nil {
			return err
		}
		mutate(p)

		update := `
			UPDATE packages
			SET tracking_number = $2, description = $3, sender = $4, resident_name = $5,
				flat_no = $6, status = $7, expected_date = $8::date, delivered_at = $9,
				delivery_otp = $10
			WHERE id = $1
		`
		if _, err := s.execer(ctx).ExecContext(ctx, update,
			int64(p.ID), p.TrackingNumber, p.Description, p.Sender, p.ResidentName,
			p.FlatNo, string(p.Status), p.ExpectedDate, p.DeliveredAt, p.DeliveryOTP,
		); err != nil {
			return fmt.Errorf("update package: %w", err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns matching packages, latest expected date first.
func (s *PostgresStore) List(ctx context.Context, q models.Query) ([]*models.Package, error) {
	var (
		conds []string
		args  []any
	)
	if q.FlatNo != "" {
		args = append(args, q.FlatNo)
		conds = append(conds, fmt.Sprintf("flat_no = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Date != nil {
		args = append(args, *q.Date)
		conds = append(conds, fmt.Sprintf("expected_date = $%d::date", len(args)))
	}
	query := `SELECT ` + packageColumns + ` FROM packages`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY expected_date DESC, id DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (*models.Package, error) {
	var (
		p           models.Package
		rawID       int64
		status      string
		deliveredAt sql.NullTime
	)
	if err := row.Scan(&rawID, &p.TrackingNumber, &p.Description, &p.Sender, &p.ResidentName, &p.FlatNo,
		&status, &p.ExpectedDate, &deliveredAt, &p.DeliveryOTP, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PackageID(rawID)
	p.Status = models.Status(status)
	if deliveredAt.Valid {
		t := deliveredAt.Time
		p.DeliveredAt = &t
	}
	return &p, nil
}
