package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efreeman/statecraft/internal/model"
)

// MessageRepo handles negotiation message database operations.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a negotiation message. Empty recipient means global.
func (r *MessageRepo) Create(ctx context.Context, phaseID string, round int, sender, recipient, content string) (*model.NegotiationMessage, error) {
	var m model.NegotiationMessage
	var rcpt sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO negotiation_messages (phase_id, round, sender, recipient, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, phase_id, round, sender, recipient, content, created_at`,
		phaseID, round, sender, nullStr(recipient), content,
	).Scan(&m.ID, &m.PhaseID, &m.Round, &m.Sender, &rcpt, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	m.Recipient = rcpt.String
	return &m, nil
}

// ListByPhase returns every message in a phase in send order.
func (r *MessageRepo) ListByPhase(ctx context.Context, phaseID string) ([]model.NegotiationMessage, error) {
	return r.list(ctx,
		`SELECT id, phase_id, round, sender, recipient, content, created_at
		 FROM negotiation_messages WHERE phase_id = $1
		 ORDER BY round, created_at`, phaseID)
}

// ListVisibleTo returns the messages a power may see: globals plus privates
// it sent or received.
func (r *MessageRepo) ListVisibleTo(ctx context.Context, phaseID, power string) ([]model.NegotiationMessage, error) {
	return r.list(ctx,
		`SELECT id, phase_id, round, sender, recipient, content, created_at
		 FROM negotiation_messages
		 WHERE phase_id = $1 AND (recipient IS NULL OR sender = $2 OR recipient = $2)
		 ORDER BY round, created_at`, phaseID, power)
}

func (r *MessageRepo) list(ctx context.Context, query string, args ...any) ([]model.NegotiationMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.NegotiationMessage
	for rows.Next() {
		var m model.NegotiationMessage
		var rcpt sql.NullString
		if err := rows.Scan(&m.ID, &m.PhaseID, &m.Round, &m.Sender, &rcpt, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Recipient = rcpt.String
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
