package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/efreeman/statecraft/internal/agent"
	"github.com/efreeman/statecraft/internal/llm"
	"github.com/efreeman/statecraft/internal/model"
	"github.com/efreeman/statecraft/pkg/board"
)

// scriptedClient replies with the same text every call.
type scriptedClient struct {
	model string
	reply string
	err   error
}

func (c *scriptedClient) Complete(context.Context, llm.Request) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *scriptedClient) Model() string { return c.model }

// memMessages is an in-memory MessageRepository.
type memMessages struct {
	mu   sync.Mutex
	msgs []model.NegotiationMessage
}

func (m *memMessages) Create(_ context.Context, phaseID string, round int, sender, recipient, content string) (*model.NegotiationMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := model.NegotiationMessage{
		ID:        fmt.Sprintf("msg-%d", len(m.msgs)+1),
		PhaseID:   phaseID,
		Round:     round,
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
	}
	m.msgs = append(m.msgs, msg)
	return &msg, nil
}

func (m *memMessages) ListByPhase(context.Context, string) ([]model.NegotiationMessage, error) {
	return m.msgs, nil
}

func (m *memMessages) ListVisibleTo(context.Context, string, string) ([]model.NegotiationMessage, error) {
	return m.msgs, nil
}

// memOrders is an in-memory OrderRepository.
type memOrders struct {
	mu   sync.Mutex
	sets []model.OrderSet
}

func (m *memOrders) Save(_ context.Context, set *model.OrderSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set.ID = fmt.Sprintf("set-%d", len(m.sets)+1)
	m.sets = append(m.sets, *set)
	return nil
}

func (m *memOrders) ListByPhase(context.Context, string) ([]model.OrderSet, error) {
	return m.sets, nil
}

func nop() zerolog.Logger { return zerolog.Nop() }

func newScheduler(rounds int, clients map[board.Power]llm.Client) (*Scheduler, *memMessages, *memOrders) {
	agents := make(map[board.Power]*agent.Agent, len(clients))
	for power, client := range clients {
		agents[power] = agent.New(power, client, nop())
	}
	msgs := &memMessages{}
	orders := &memOrders{}
	return New(agents, msgs, orders, rounds, nop()), msgs, orders
}

func TestRunOrdersCollectsAndPersists(t *testing.T) {
	clients := map[board.Power]llm.Client{
		board.France:  &scriptedClient{model: "m1", reply: `{"orders": ["A PAR - BUR"]}`},
		board.Germany: &scriptedClient{model: "m2", reply: "nonsense"},
	}
	s, _, orders := newScheduler(1, clients)

	possible := map[board.Power]map[string][]string{
		board.France:  {"PAR": {"A PAR H", "A PAR - BUR"}},
		board.Germany: {"MUN": {"A MUN H", "A MUN - TYR"}},
	}
	contexts := map[board.Power]string{board.France: "ctx", board.Germany: "ctx"}

	collected, err := s.RunOrders(context.Background(), "phase-1", "S1901M", contexts, possible)
	if err != nil {
		t.Fatalf("RunOrders: %v", err)
	}
	if len(collected) != 2 {
		t.Fatalf("collected %d powers, want 2", len(collected))
	}
	if collected[board.France][0] != "A PAR - BUR" {
		t.Errorf("france orders = %v", collected[board.France])
	}
	// Germany's garbage reply falls back to holds.
	if collected[board.Germany][0] != "A MUN H" {
		t.Errorf("germany fallback = %v", collected[board.Germany])
	}

	if len(orders.sets) != 2 {
		t.Fatalf("persisted %d sets", len(orders.sets))
	}
	if orders.sets[0].Power != "FRANCE" || orders.sets[1].Power != "GERMANY" {
		t.Errorf("sets not persisted in power order: %s, %s", orders.sets[0].Power, orders.sets[1].Power)
	}
	if !orders.sets[1].Fallback {
		t.Error("germany set not flagged fallback")
	}

	if got := s.Stats().DecodingErrors()["GERMANY"]; got != 1 {
		t.Errorf("germany decoding errors = %d, want 1", got)
	}
	if got := s.Stats().DecodingErrors()["FRANCE"]; got != 0 {
		t.Errorf("france decoding errors = %d, want 0", got)
	}
}

func TestRunOrdersSkipsPowersWithoutUnits(t *testing.T) {
	clients := map[board.Power]llm.Client{
		board.France: &scriptedClient{model: "m1", reply: `{"orders": ["A PAR H"]}`},
		board.Italy:  &scriptedClient{model: "m1", reply: `{"orders": []}`},
	}
	s, _, _ := newScheduler(1, clients)

	possible := map[board.Power]map[string][]string{
		board.France: {"PAR": {"A PAR H"}},
		// Italy eliminated: no entry.
	}
	collected, err := s.RunOrders(context.Background(), "phase-1", "S1905M", map[board.Power]string{board.France: "ctx"}, possible)
	if err != nil {
		t.Fatalf("RunOrders: %v", err)
	}
	if _, ok := collected[board.Italy]; ok {
		t.Error("eliminated power produced orders")
	}
}

func TestNegotiationNoRepeatUntilReply(t *testing.T) {
	clients := map[board.Power]llm.Client{
		board.France:  &scriptedClient{model: "m1", reply: `{"message_type": "private", "recipient": "GERMANY", "content": "proposal"}`},
		board.Germany: &scriptedClient{model: "m2", reply: `{"message_type": "global", "content": "announcement"}`},
	}
	s, msgs, _ := newScheduler(2, clients)

	all, err := s.RunNegotiations(context.Background(), "phase-1", "S1901M", map[board.Power]string{
		board.France: "ctx", board.Germany: "ctx",
	})
	if err != nil {
		t.Fatalf("RunNegotiations: %v", err)
	}

	// Round 1: both send. Round 2: France is still awaiting Germany's reply,
	// so its repeat private message is rejected; only Germany's global lands.
	if len(all) != 3 {
		t.Fatalf("message count = %d, want 3: %+v", len(all), all)
	}
	franceCount := 0
	for _, m := range msgs.msgs {
		if m.Sender == "FRANCE" {
			franceCount++
		}
	}
	if franceCount != 1 {
		t.Errorf("france sent %d messages, want 1", franceCount)
	}
	if got := s.Stats().LLMFailures()["m1"]; got != 1 {
		t.Errorf("m1 failures = %d, want 1", got)
	}
}

func TestNegotiationReplyClearsWait(t *testing.T) {
	clients := map[board.Power]llm.Client{
		board.France:  &scriptedClient{model: "m1", reply: `{"message_type": "private", "recipient": "GERMANY", "content": "proposal"}`},
		board.Germany: &scriptedClient{model: "m2", reply: `{"message_type": "private", "recipient": "FRANCE", "content": "counter"}`},
	}
	s, _, _ := newScheduler(2, clients)

	all, err := s.RunNegotiations(context.Background(), "phase-1", "S1901M", map[board.Power]string{
		board.France: "ctx", board.Germany: "ctx",
	})
	if err != nil {
		t.Fatalf("RunNegotiations: %v", err)
	}
	// Each round Germany replies to France, clearing France's wait, so both
	// powers send in both rounds.
	if len(all) != 4 {
		t.Fatalf("message count = %d, want 4", len(all))
	}
}

func TestNegotiationToleratesFailingAgent(t *testing.T) {
	clients := map[board.Power]llm.Client{
		board.France:  &scriptedClient{model: "m1", err: errors.New("unavailable")},
		board.Germany: &scriptedClient{model: "m2", reply: `{"message_type": "global", "content": "hello"}`},
	}
	s, _, _ := newScheduler(1, clients)

	all, err := s.RunNegotiations(context.Background(), "phase-1", "S1901M", map[board.Power]string{
		board.France: "ctx", board.Germany: "ctx",
	})
	if err != nil {
		t.Fatalf("RunNegotiations: %v", err)
	}
	if len(all) != 1 || all[0].Sender != "GERMANY" {
		t.Fatalf("messages = %+v", all)
	}
	if got := s.Stats().LLMFailures()["m1"]; got != 1 {
		t.Errorf("m1 failures = %d", got)
	}
}

func TestRunStateUpdates(t *testing.T) {
	clients := map[board.Power]llm.Client{
		board.France:  &scriptedClient{model: "m1", reply: `{"goals": ["Take MUN"], "relationships": {"GERMANY": "Enemy"}, "journal": "note"}`},
		board.Germany: &scriptedClient{model: "m2", err: errors.New("unavailable")},
	}
	s, _, _ := newScheduler(1, clients)

	s.RunStateUpdates(context.Background(), "S1901M", map[board.Power]string{
		board.France: "ctx", board.Germany: "ctx",
	})

	france := s.agents[board.France]
	if goals := france.Goals(); len(goals) != 1 || goals[0] != "Take MUN" {
		t.Errorf("france goals = %v", goals)
	}
	if r := france.Relationship(board.Germany); r != agent.Enemy {
		t.Errorf("france stance toward germany = %v, want Enemy", r)
	}
	if got := s.Stats().LLMFailures()["m2"]; got != 1 {
		t.Errorf("m2 failures = %d, want 1", got)
	}
}

func TestVisibleTranscriptFiltersPrivates(t *testing.T) {
	all := []model.NegotiationMessage{
		{Round: 1, Sender: "FRANCE", Recipient: "GERMANY", Content: "secret"},
		{Round: 1, Sender: "RUSSIA", Content: "public"},
		{Round: 2, Sender: "GERMANY", Recipient: "FRANCE", Content: "reply"},
	}
	lines := visibleTranscript(all, board.Russia)
	if len(lines) != 1 || !strings.Contains(lines[0], "public") {
		t.Errorf("russia sees %v", lines)
	}
	lines = visibleTranscript(all, board.France)
	if len(lines) != 3 {
		t.Errorf("france sees %d lines, want 3", len(lines))
	}
}

func TestStatsConcurrentRecording(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordDecodingError("FRANCE")
			s.RecordLLMFailure("m1")
		}()
	}
	wg.Wait()
	if got := s.DecodingErrors()["FRANCE"]; got != 50 {
		t.Errorf("decoding errors = %d", got)
	}
	if got := s.LLMFailures()["m1"]; got != 50 {
		t.Errorf("llm failures = %d", got)
	}
}
