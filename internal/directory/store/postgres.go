package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatehouse/internal/directory/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
	txcontext "gatehouse/pkg/platform/tx"
)

// PostgresStore persists residents and guards.
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

const residentColumns = `id, name, flat_no, email, contact, emergency_contact, status, created_at, updated_at`

func (s *PostgresStore) CreateResident(ctx context.Context, r *models.Resident) error {
	query := `
		INSERT INTO residents (name, flat_no, email, contact, emergency_contact, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var newID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		r.Name, r.FlatNo, r.Email, r.Contact, r.EmergencyContact, string(r.Status), r.CreatedAt, r.UpdatedAt,
	).Scan(&newID)
	if err != nil {
		return fmt.Errorf("insert resident: %w", err)
	}
	r.ID = id.ResidentID(newID)
	return nil
}

func (s *PostgresStore) FindResident(ctx context.Context, residentID id.ResidentID) (*models.Resident, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+residentColumns+` FROM residents WHERE id = $1`, int64(residentID))
	r, err := scanResident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find resident: %w", err)
	}
	return r, nil
}

// ListResidents matches the filter against name, flat, email and contact.
func (s *PostgresStore) ListResidents(ctx context.Context, f models.Filter) ([]*models.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents`
	var args []any
	if !f.IsBlank() {
		query += ` WHERE name ILIKE $1 OR flat_no ILIKE $1 OR email ILIKE $1 OR contact ILIKE $1`
		args = append(args, f.LikePattern())
	}
	query += ` ORDER BY id`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	defer rows.Close()

	var out []*models.Resident
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate residents: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateResident(ctx context.Context, residentID id.ResidentID, fn func(*models.Resident) error) (*models.Resident, error) {
	var out *models.Resident
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		row := s.execer(ctx).QueryRowContext(ctx,
			`SELECT `+residentColumns+` FROM residents WHERE id = $1 FOR UPDATE`, int64(residentID))
		r, err := scanResident(row)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock resident: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
		_, err = s.execer(ctx).ExecContext(ctx, `
			UPDATE residents
			SET name = $2, flat_no = $3, email = $4, contact = $5,
				emergency_contact = $6, status = $7, updated_at = $8
			WHERE id = $1
		`, int64(r.ID), r.Name, r.FlatNo, r.Email, r.Contact, r.EmergencyContact, string(r.Status), r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update resident: %w", err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanResident(row rowScanner) (*models.Resident, error) {
	var (
		r      models.Resident
		rawID  int64
		status string
	)
	if err := row.Scan(&rawID, &r.Name, &r.FlatNo, &r.Email, &r.Contact, &r.EmergencyContact,
		&status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.ResidentID(rawID)
	r.Status = models.ResidentStatus(status)
	return &r, nil
}

const guardColumns = `id, name, email, contact, shift, created_at, updated_at`

func (s *PostgresStore) CreateGuard(ctx context.Context, g *models.Guard) error {
	query := `
		INSERT INTO guards (name, email, contact, shift, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var newID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		g.Name, g.Email, g.Contact, g.Shift, g.CreatedAt, g.UpdatedAt,
	).Scan(&newID)
	if err != nil {
		return fmt.Errorf("insert guard: %w", err)
	}
	g.ID = id.GuardID(newID)
	return nil
}

func (s *PostgresStore) FindGuard(ctx context.Context, guardID id.GuardID) (*models.Guard, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+guardColumns+` FROM guards WHERE id = $1`, int64(guardID))
	g, err := scanGuard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find guard: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) ListGuards(ctx context.Context, f models.Filter) ([]*models.Guard, error) {
	query := `SELECT ` + guardColumns + ` FROM guards`
	var args []any
	if !f.IsBlank() {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1 OR contact ILIKE $1 OR shift ILIKE $1`
		args = append(args, f.LikePattern())
	}
	query += ` ORDER BY id`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list guards: %w", err)
	}
	defer rows.Close()

	var out []*models.Guard
	for rows.Next() {
		g, err := scanGuard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guard: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guards: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateGuard(ctx context.Context, guardID id.GuardID, fn func(*models.Guard) error) (*models.Guard, error) {
	var out *models.Guard
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		row := s.execer(ctx).QueryRowContext(ctx,
			`SELECT `+guardColumns+` FROM guards WHERE id = $1 FOR UPDATE`, int64(guardID))
		g, err := scanGuard(row)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock guard: %w", err)
		}
		if err := fn(g); err != nil {
			return err
		}
		_, err = s.execer(ctx).ExecContext(ctx, `
			UPDATE guards
			SET name = $2, email = $3, contact = $4, shift = $5, updated_at = $6
			WHERE id = $1
		`, int64(g.ID), g.Name, g.Email, g.Contact, g.Shift, g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update guard: %w", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanGuard(row rowScanner) (*models.Guard, error) {
	var (
		g     models.Guard
		rawID int64
	)
	if err := row.Scan(&rawID, &g.Name, &g.Email, &g.Contact, &g.Shift, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.ID = id.GuardID(rawID)
	return &g, nil
}
