package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "gatehouse/pkg/platform/audit"
	txcontext "gatehouse/pkg/platform/tx"
)

const eventColumns = `category, occurred_at, subject, action, flat_no,
	decision, reason, request_id, actor_id, client_ip, terminal`

// Store writes the gate log to audit_events. Inside a RunInTx callback the
// row commits or rolls back with the state change it describes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	const query = `INSERT INTO audit_events (id, ` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	args := append([]any{uuid.New()}, eventArgs(e)...)
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append audit event %s for %s: %w", e.Action, e.Subject, err)
	}
	return nil
}

// ListBySubject returns the trail of one visit, pass or guard, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	const query = `SELECT ` + eventColumns + `
		FROM audit_events WHERE subject = $1 ORDER BY occurred_at`
	rows, err := s.execer(ctx).QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events for %s: %w", subject, err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func eventArgs(e audit.Event) []any {
	return []any{
		string(e.Category), e.Timestamp, e.Subject, e.Action, e.FlatNo,
		e.Decision, e.Reason, e.RequestID, e.ActorID, e.ClientIP, e.Terminal,
	}
}

func scanEvent(rows *sql.Rows) (audit.Event, error) {
	var (
		e        audit.Event
		category string
	)
	err := rows.Scan(&category, &e.Timestamp, &e.Subject, &e.Action, &e.FlatNo,
		&e.Decision, &e.Reason, &e.RequestID, &e.ActorID, &e.ClientIP, &e.Terminal)
	if err != nil {
		return e, fmt.Errorf("scan audit event: %w", err)
	}
	e.Category = audit.EventCategory(category)
	return e, nil
}
