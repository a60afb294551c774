package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/efreeman/statecraft/internal/model"
)

// RunRepo handles run and phase database operations.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// CreateRun inserts a new run in pending status.
func (r *RunRepo) CreateRun(ctx context.Context, gameID string, models json.RawMessage) (*model.Run, error) {
	var run model.Run
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO runs (game_id, status, models)
		 VALUES ($1, 'pending', $2)
		 RETURNING id, game_id, status, models, created_at`,
		gameID, models,
	).Scan(&run.ID, &run.GameID, &run.Status, &run.Models, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return &run, nil
}

// FindRun returns a run by ID, or nil if it does not exist.
func (r *RunRepo) FindRun(ctx context.Context, id string) (*model.Run, error) {
	var run model.Run
	var winner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, status, winner, models, created_at, started_at, finished_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.GameID, &run.Status, &winner, &run.Models, &run.CreatedAt, &run.StartedAt, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	run.Winner = winner.String
	return &run, nil
}

// SetRunStatus updates a run's status, stamping started_at when a run
// becomes active.
func (r *RunRepo) SetRunStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = $1,
		   started_at = CASE WHEN $1 = 'active' AND started_at IS NULL THEN now() ELSE started_at END
		 WHERE id = $2`, status, id,
	)
	if err != nil {
		return fmt.Errorf("set run status: %w", err)
	}
	return nil
}

// FinishRun marks a run finished and records the winner (empty for a draw).
func (r *RunRepo) FinishRun(ctx context.Context, id, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = 'finished', winner = $1, finished_at = now() WHERE id = $2`,
		nullStr(winner), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// CreatePhase records a new phase snapshot for a run.
func (r *RunRepo) CreatePhase(ctx context.Context, runID string, year int, season, phaseType string, state json.RawMessage) (*model.PhaseRecord, error) {
	var p model.PhaseRecord
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO phases (run_id, year, season, phase_type, state)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, run_id, year, season, phase_type, state, created_at`,
		runID, year, season, phaseType, state,
	).Scan(&p.ID, &p.RunID, &p.Year, &p.Season, &p.PhaseType, &p.State, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}
	return &p, nil
}

// ResolvePhase marks a phase as resolved.
func (r *RunRepo) ResolvePhase(ctx context.Context, phaseID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE phases SET resolved_at = now() WHERE id = $1`, phaseID,
	)
	if err != nil {
		return fmt.Errorf("resolve phase: %w", err)
	}
	return nil
}

// ListPhases returns all phases for a run in chronological order.
func (r *RunRepo) ListPhases(ctx context.Context, runID string) ([]model.PhaseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, year, season, phase_type, state, created_at, resolved_at
		 FROM phases WHERE run_id = $1
		 ORDER BY year,
		   CASE season WHEN 'SPRING' THEN 1 WHEN 'FALL' THEN 2 ELSE 3 END,
		   CASE phase_type WHEN 'MOVEMENT' THEN 1 WHEN 'RETREAT' THEN 2 WHEN 'ADJUSTMENT' THEN 3 ELSE 4 END`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var phases []model.PhaseRecord
	for rows.Next() {
		var p model.PhaseRecord
		if err := rows.Scan(&p.ID, &p.RunID, &p.Year, &p.Season, &p.PhaseType, &p.State, &p.CreatedAt, &p.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
