// Package repository defines the persistence interfaces the orchestrator
// depends on. Postgres implementations live in the postgres subpackage,
// Redis-backed caches in the redis subpackage.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/efreeman/statecraft/internal/model"
)

// RunRepository defines run and phase data operations.
type RunRepository interface {
	CreateRun(ctx context.Context, gameID string, models json.RawMessage) (*model.Run, error)
	FindRun(ctx context.Context, id string) (*model.Run, error)
	SetRunStatus(ctx context.Context, id, status string) error
	FinishRun(ctx context.Context, id, winner string) error
	CreatePhase(ctx context.Context, runID string, year int, season, phaseType string, state json.RawMessage) (*model.PhaseRecord, error)
	ResolvePhase(ctx context.Context, phaseID string) error
	ListPhases(ctx context.Context, runID string) ([]model.PhaseRecord, error)
}

// MessageRepository defines negotiation message operations.
type MessageRepository interface {
	Create(ctx context.Context, phaseID string, round int, sender, recipient, content string) (*model.NegotiationMessage, error)
	ListByPhase(ctx context.Context, phaseID string) ([]model.NegotiationMessage, error)
	ListVisibleTo(ctx context.Context, phaseID, power string) ([]model.NegotiationMessage, error)
}

// DiaryRepository defines diary entry operations.
type DiaryRepository interface {
	Append(ctx context.Context, runID, power, phase, kind, content string) (*model.DiaryEntry, error)
	ListByPower(ctx context.Context, runID, power string) ([]model.DiaryEntry, error)
	CountByPower(ctx context.Context, runID, power string) (int, error)
	ReplaceWithSummary(ctx context.Context, runID, power, phase, summary string) error
}

// OrderRepository defines submitted-order operations.
type OrderRepository interface {
	Save(ctx context.Context, set *model.OrderSet) error
	ListByPhase(ctx context.Context, phaseID string) ([]model.OrderSet, error)
}

// ContextCache caches composed order contexts so repeated prompt builds for
// the same phase do not redo the graph queries.
type ContextCache interface {
	SetContext(ctx context.Context, runID, phase, power string, text string, ttl time.Duration) error
	GetContext(ctx context.Context, runID, phase, power string) (string, bool, error)
	ClearRun(ctx context.Context, runID string) error
}
