package repository

import (
	"context"
	"fmt"
	"sync"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/infrastructure/database"
)

// EventRepository is an append-only conversation journal backed by PostgreSQL.
// Rows are never updated or deleted; id preserves append order.
// Inserts are serialised so ids follow call order across sessions.
type EventRepository struct {
	mu sync.Mutex
	db database.DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// Append inserts one event and returns once it is committed
func (r *EventRepository) Append(ctx context.Context, rec models.EventRecord) error {
	query := `
		INSERT INTO conversation_events (occurred_at, session_id, role, text)
		VALUES ($1, $2, $3, $4)`

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec(ctx, query, rec.Timestamp, rec.SessionID, string(rec.Role), rec.Text); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListBySession returns a session's events in append order
func (r *EventRepository) ListBySession(ctx context.Context, sessionID string) ([]models.EventRecord, error) {
	query := `
		SELECT occurred_at, session_id, role, text
		FROM conversation_events
		WHERE session_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var records []models.EventRecord
	for rows.Next() {
		var rec models.EventRecord
		var role string
		if err := rows.Scan(&rec.Timestamp, &rec.SessionID, &role, &rec.Text); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		rec.Role = models.Role(role)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close is a no-op; the pool is owned by database.PostgresDB
func (r *EventRepository) Close() error {
	return nil
}
