//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/efreeman/statecraft/internal/model"
	"github.com/efreeman/statecraft/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

func createTestRun(t *testing.T, repo *RunRepo) *model.Run {
	t.Helper()
	run, err := repo.CreateRun(context.Background(), "game-1", json.RawMessage(`{"FRANCE":"gpt-4o"}`))
	if err != nil {
		t.Fatalf("create test run: %v", err)
	}
	return run
}

func createTestPhase(t *testing.T, repo *RunRepo, runID string) *model.PhaseRecord {
	t.Helper()
	p, err := repo.CreatePhase(context.Background(), runID, 1901, "SPRING", "MOVEMENT", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("create test phase: %v", err)
	}
	return p
}

// --- RunRepo Tests ---

func TestRunLifecycle(t *testing.T) {
	setup(t)
	repo := NewRunRepo(testDB)
	ctx := context.Background()

	run := createTestRun(t, repo)
	if run.Status != "pending" {
		t.Fatalf("new run status = %s", run.Status)
	}

	if err := repo.SetRunStatus(ctx, run.ID, "active"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := repo.FindRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("find run: %v", err)
	}
	if got.Status != "active" || got.StartedAt == nil {
		t.Fatalf("active run: status=%s startedAt=%v", got.Status, got.StartedAt)
	}

	if err := repo.FinishRun(ctx, run.ID, "FRANCE"); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	got, _ = repo.FindRun(ctx, run.ID)
	if got.Status != "finished" || got.Winner != "FRANCE" || got.FinishedAt == nil {
		t.Fatalf("finished run: %+v", got)
	}
}

func TestFindRunMissing(t *testing.T) {
	setup(t)
	repo := NewRunRepo(testDB)

	got, err := repo.FindRun(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find run: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing run")
	}
}

func TestPhaseOrdering(t *testing.T) {
	setup(t)
	repo := NewRunRepo(testDB)
	ctx := context.Background()
	run := createTestRun(t, repo)

	// Inserted out of order on purpose.
	repo.CreatePhase(ctx, run.ID, 1901, "FALL", "MOVEMENT", json.RawMessage(`{}`))
	repo.CreatePhase(ctx, run.ID, 1901, "SPRING", "MOVEMENT", json.RawMessage(`{}`))
	repo.CreatePhase(ctx, run.ID, 1902, "SPRING", "MOVEMENT", json.RawMessage(`{}`))

	phases, err := repo.ListPhases(ctx, run.ID)
	if err != nil {
		t.Fatalf("list phases: %v", err)
	}
	if len(phases) != 3 {
		t.Fatalf("phase count = %d", len(phases))
	}
	if phases[0].Season != "SPRING" || phases[0].Year != 1901 {
		t.Errorf("first phase = %d %s", phases[0].Year, phases[0].Season)
	}
	if phases[2].Year != 1902 {
		t.Errorf("last phase year = %d", phases[2].Year)
	}
}

// --- MessageRepo Tests ---

func TestMessageVisibility(t *testing.T) {
	setup(t)
	runs := NewRunRepo(testDB)
	msgs := NewMessageRepo(testDB)
	ctx := context.Background()
	phase := createTestPhase(t, runs, createTestRun(t, runs).ID)

	msgs.Create(ctx, phase.ID, 1, "FRANCE", "GERMANY", "private to germany")
	msgs.Create(ctx, phase.ID, 1, "FRANCE", "", "global broadcast")
	msgs.Create(ctx, phase.ID, 2, "RUSSIA", "TURKEY", "private to turkey")

	visible, err := msgs.ListVisibleTo(ctx, phase.ID, "GERMANY")
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("germany sees %d messages, want 2", len(visible))
	}
	for _, m := range visible {
		if m.Recipient == "TURKEY" {
			t.Error("germany can read russia's private message")
		}
	}

	all, err := msgs.ListByPhase(ctx, phase.ID)
	if err != nil {
		t.Fatalf("list by phase: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("phase has %d messages, want 3", len(all))
	}
}

// --- DiaryRepo Tests ---

func TestDiaryConsolidation(t *testing.T) {
	setup(t)
	runs := NewRunRepo(testDB)
	diary := NewDiaryRepo(testDB)
	ctx := context.Background()
	run := createTestRun(t, runs)

	for i := 0; i < 4; i++ {
		if _, err := diary.Append(ctx, run.ID, "FRANCE", "S1901M", "negotiation", "entry"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	diary.Append(ctx, run.ID, "GERMANY", "S1901M", "orders", "german entry")

	n, err := diary.CountByPower(ctx, run.ID, "FRANCE")
	if err != nil || n != 4 {
		t.Fatalf("count = %d, err = %v", n, err)
	}

	if err := diary.ReplaceWithSummary(ctx, run.ID, "FRANCE", "F1901M", "condensed history"); err != nil {
		t.Fatalf("replace with summary: %v", err)
	}

	entries, err := diary.ListByPower(ctx, run.ID, "FRANCE")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != "summary" {
		t.Fatalf("after consolidation: %+v", entries)
	}

	// Other powers' diaries are untouched.
	if n, _ := diary.CountByPower(ctx, run.ID, "GERMANY"); n != 1 {
		t.Errorf("germany diary count = %d", n)
	}
}

// --- OrderRepo Tests ---

func TestOrderSetSaveAndList(t *testing.T) {
	setup(t)
	runs := NewRunRepo(testDB)
	orders := NewOrderRepo(testDB)
	ctx := context.Background()
	phase := createTestPhase(t, runs, createTestRun(t, runs).ID)

	set := &model.OrderSet{
		PhaseID:  phase.ID,
		Power:    "FRANCE",
		Model:    "gpt-4o",
		Orders:   json.RawMessage(`["A PAR - BUR","F BRE - MAO"]`),
		RawReply: "raw model text",
	}
	if err := orders.Save(ctx, set); err != nil {
		t.Fatalf("save: %v", err)
	}
	if set.ID == "" || set.SubmittedAt.IsZero() {
		t.Fatal("save did not fill generated fields")
	}

	fallback := &model.OrderSet{
		PhaseID:  phase.ID,
		Power:    "GERMANY",
		Model:    "gpt-4o",
		Orders:   json.RawMessage(`["A BER H","A MUN H","F KIE H"]`),
		Fallback: true,
	}
	if err := orders.Save(ctx, fallback); err != nil {
		t.Fatalf("save fallback: %v", err)
	}

	sets, err := orders.ListByPhase(ctx, phase.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("set count = %d", len(sets))
	}
	if sets[0].Power != "FRANCE" || sets[1].Power != "GERMANY" {
		t.Errorf("sets not ordered by power: %s, %s", sets[0].Power, sets[1].Power)
	}
	if !sets[1].Fallback {
		t.Error("fallback flag lost")
	}
}
