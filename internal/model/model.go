package model

import (
	"encoding/json"
	"time"
)

// Run represents one orchestrated game run: a set of agents playing a single
// game from start to finish.
type Run struct {
	ID         string          `json:"id"`
	GameID     string          `json:"game_id"`
	Status     string          `json:"status"` // pending, active, finished, aborted
	Winner     string          `json:"winner,omitempty"`
	Models     json.RawMessage `json:"models"` // power -> model assignments
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// PhaseRecord is a snapshot of one game phase as seen by the orchestrator,
// with the state the agents deliberated over.
type PhaseRecord struct {
	ID         string          `json:"id"`
	RunID      string          `json:"run_id"`
	Year       int             `json:"year"`
	Season     string          `json:"season"`
	PhaseType  string          `json:"phase_type"`
	State      json.RawMessage `json:"state"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// NegotiationMessage is one press message exchanged during a negotiation
// round. An empty Recipient means a global broadcast.
type NegotiationMessage struct {
	ID        string    `json:"id"`
	PhaseID   string    `json:"phase_id"`
	Round     int       `json:"round"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DiaryEntry is one entry in a power's private diary: reasoning the agent
// recorded for itself, keyed to the phase it was written in.
type DiaryEntry struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Power     string    `json:"power"`
	Phase     string    `json:"phase"` // e.g. "S1901M"
	Kind      string    `json:"kind"`  // negotiation, orders, summary
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderSet is the batch of orders one power submitted for a phase, together
// with how the agent arrived at them.
type OrderSet struct {
	ID          string          `json:"id"`
	PhaseID     string          `json:"phase_id"`
	Power       string          `json:"power"`
	Model       string          `json:"model"`
	Orders      json.RawMessage `json:"orders"`
	Fallback    bool            `json:"fallback"` // true when hold orders were substituted
	RawReply    string          `json:"raw_reply,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}
