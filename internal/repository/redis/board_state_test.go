package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestBoardStateRoundTrip(t *testing.T) {
	c, _ := testClient(t)
	ctx := context.Background()

	state := json.RawMessage(`{"Year":1901,"Season":"SPRING","Units":[{"Kind":1,"Power":"FRANCE","Loc":"PAR"}]}`)
	if err := c.SetBoardState(ctx, "run1", "S1901M", state); err != nil {
		t.Fatalf("SetBoardState: %v", err)
	}

	got, err := c.GetBoardState(ctx, "run1", "S1901M")
	if err != nil {
		t.Fatalf("GetBoardState: %v", err)
	}
	if !bytes.Equal(got, state) {
		t.Errorf("round trip mismatch: %s", got)
	}
}

func TestBoardStateMiss(t *testing.T) {
	c, _ := testClient(t)

	got, err := c.GetBoardState(context.Background(), "run1", "F1910M")
	if err != nil {
		t.Fatalf("GetBoardState: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing state, got %s", got)
	}
}

func TestClearRunRemovesBoardStates(t *testing.T) {
	c, _ := testClient(t)
	ctx := context.Background()

	if err := c.SetBoardState(ctx, "run1", "S1901M", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("SetBoardState: %v", err)
	}
	if err := c.ClearRun(ctx, "run1"); err != nil {
		t.Fatalf("ClearRun: %v", err)
	}
	got, err := c.GetBoardState(ctx, "run1", "S1901M")
	if err != nil {
		t.Fatalf("GetBoardState: %v", err)
	}
	if got != nil {
		t.Error("board state survived ClearRun")
	}
}
