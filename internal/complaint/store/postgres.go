package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gatehouse/internal/complaint/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
	txcontext "gatehouse/pkg/platform/tx"
)

// PostgresStore persists complaints in the complaints table.
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

const complaintColumns = `id, title, description, category, priority, status,
	resident_name, flat_no, assigned_to, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (
			title, description, category, priority, status,
			resident_name, flat_no, assigned_to, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
		RETURNING id
	`
	var newID int64
	if err := s.execer(ctx).QueryRowContext(ctx, query,
		c.Title,
		c.Description,
		c.Category,
		string(c.Priority),
		string(c.Status),
		c.ResidentName,
		c.FlatNo,
		c.AssignedTo,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&newID); err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	c.ID = id.ComplaintID(newID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	c, err := scanComplaint(s.execer(ctx).QueryRowContext(ctx, query, int64(complaintID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return c, nil
}

// Execute locks the complaint row for the duration of validate and mutate.
func (s *PostgresStore) Execute(ctx context.Context, complaintID id.ComplaintID, validate func(*models.Complaint) error, mutate func(*models.Complaint)) (*models.Complaint, error) {
	var result *models.Complaint
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1 FOR UPDATE`
		c, err := scanComplaint(s.execer(ctx).QueryRowContext(ctx, query, int64(complaintID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock complaint: %w", err)
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)

		update := `
			UPDATE complaints
			SET title = $2, description = $3, category = $4, priority = $5, status = $6,
				assigned_to = NULLIF($7, ''), updated_at = $8
			WHERE id = $1
		`
		if _, err := s.execer(ctx).ExecContext(ctx, update,
			int64(c.ID), c.Title, c.Description, c.Category, string(c.Priority), string(c.Status),
			c.AssignedTo, c.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update complaint: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns matching complaints, newest first.
func (s *PostgresStore) List(ctx context.Context, q models.Query) ([]*models.Complaint, error) {
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
	if q.Priority != "" {
		args = append(args, string(q.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var (
		c          models.Complaint
		rawID      int64
		priority   string
		status     string
		assignedTo sql.NullString
		updatedAt  sql.NullTime
	)
	if err := row.Scan(&rawID, &c.Title, &c.Description, &c.Category, &priority, &status,
		&c.ResidentName, &c.FlatNo, &assignedTo, &c.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	c.ID = id.ComplaintID(rawID)
	c.Priority = models.Priority(priority)
	c.Status = models.Status(status)
	c.AssignedTo = assignedTo.String
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return &c, nil
}
