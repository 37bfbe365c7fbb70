// Package transcript archives every inbound and outbound message in Postgres.
// The archive is an audit trail for the clinic team; the dialogue itself never
// reads from it.
package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Direction of an archived message relative to the clinic.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// PgxPool is the subset of pgxpool.Pool the store needs, kept narrow so tests
// can substitute pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Entry is one archived message.
type Entry struct {
	ID        uuid.UUID
	Phone     string
	Unit      string
	Direction string
	Body      string
	Status    string
	CreatedAt time.Time
}

// Store persists the message archive. A nil Store is a no-op, for deployments
// without Postgres.
type Store struct {
	pool PgxPool
}

// NewStore builds the archive store. Returns nil when the pool is nil.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// Append archives one message. Best-effort by contract: callers log the error
// and move on.
func (s *Store) Append(ctx context.Context, e Entry) error {
	if s == nil || s.pool == nil {
		return nil
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO transcript_messages (id, phone, unit, direction, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query, e.ID, e.Phone, e.Unit, e.Direction, e.Body, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("transcript: append: %w", err)
	}
	return nil
}

// Recent returns the latest messages for a phone, newest first.
func (s *Store) Recent(ctx context.Context, phone string, limit int) ([]Entry, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, phone, unit, direction, body, status, created_at
		FROM transcript_messages
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("transcript: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Phone, &e.Unit, &e.Direction, &e.Body, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("transcript: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: rows: %w", err)
	}
	return out, nil
}
