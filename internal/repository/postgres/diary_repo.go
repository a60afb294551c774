package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efreeman/statecraft/internal/model"
)

// DiaryRepo handles diary entry database operations.
type DiaryRepo struct {
	db *sql.DB
}

// NewDiaryRepo creates a DiaryRepo.
func NewDiaryRepo(db *sql.DB) *DiaryRepo {
	return &DiaryRepo{db: db}
}

// Append adds a diary entry for a power.
func (r *DiaryRepo) Append(ctx context.Context, runID, power, phase, kind, content string) (*model.DiaryEntry, error) {
	var e model.DiaryEntry
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO diary_entries (run_id, power, phase, kind, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, run_id, power, phase, kind, content, created_at`,
		runID, power, phase, kind, content,
	).Scan(&e.ID, &e.RunID, &e.Power, &e.Phase, &e.Kind, &e.Content, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append diary entry: %w", err)
	}
	return &e, nil
}

// ListByPower returns a power's diary in chronological order.
func (r *DiaryRepo) ListByPower(ctx context.Context, runID, power string) ([]model.DiaryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, power, phase, kind, content, created_at
		 FROM diary_entries WHERE run_id = $1 AND power = $2
		 ORDER BY created_at`, runID, power,
	)
	if err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	defer rows.Close()

	var entries []model.DiaryEntry
	for rows.Next() {
		var e model.DiaryEntry
		if err := rows.Scan(&e.ID, &e.RunID, &e.Power, &e.Phase, &e.Kind, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diary entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByPower returns the number of diary entries for a power.
func (r *DiaryRepo) CountByPower(ctx context.Context, runID, power string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM diary_entries WHERE run_id = $1 AND power = $2`,
		runID, power,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count diary entries: %w", err)
	}
	return n, nil
}

// ReplaceWithSummary collapses a power's diary into a single summary entry.
// Used when the diary grows past the consolidation threshold.
func (r *DiaryRepo) ReplaceWithSummary(ctx context.Context, runID, power, phase, summary string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM diary_entries WHERE run_id = $1 AND power = $2`, runID, power,
	); err != nil {
		return fmt.Errorf("clear diary: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO diary_entries (run_id, power, phase, kind, content)
		 VALUES ($1, $2, $3, 'summary', $4)`,
		runID, power, phase, summary,
	); err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return tx.Commit()
}
