package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efreeman/statecraft/internal/model"
)

// OrderRepo handles submitted-order database operations.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo creates an OrderRepo.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Save inserts one power's order set for a phase and fills in the generated
// ID and timestamp.
func (r *OrderRepo) Save(ctx context.Context, set *model.OrderSet) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO order_sets (phase_id, power, model, orders, fallback, raw_reply)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, submitted_at`,
		set.PhaseID, set.Power, set.Model, set.Orders, set.Fallback, nullStr(set.RawReply),
	).Scan(&set.ID, &set.SubmittedAt)
	if err != nil {
		return fmt.Errorf("save order set: %w", err)
	}
	return nil
}

// ListByPhase returns every order set submitted in a phase.
func (r *OrderRepo) ListByPhase(ctx context.Context, phaseID string) ([]model.OrderSet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, phase_id, power, model, orders, fallback, raw_reply, submitted_at
		 FROM order_sets WHERE phase_id = $1 ORDER BY power`, phaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order sets: %w", err)
	}
	defer rows.Close()

	var sets []model.OrderSet
	for rows.Next() {
		var s model.OrderSet
		var raw sql.NullString
		if err := rows.Scan(&s.ID, &s.PhaseID, &s.Power, &s.Model, &s.Orders, &s.Fallback, &raw, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan order set: %w", err)
		}
		s.RawReply = raw.String
		sets = append(sets, s)
	}
	return sets, rows.Err()
}
