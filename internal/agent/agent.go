// Package agent holds per-power agent state and the decision loops that turn
// a composed board context into negotiation messages and orders.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/efreeman/statecraft/internal/llm"
	"github.com/efreeman/statecraft/pkg/board"
)

// Agent is one power's persistent state across a run. All methods are safe
// for concurrent use; negotiation fan-out calls agents from multiple
// goroutines.
type Agent struct {
	power  board.Power
	client llm.Client
	log    zerolog.Logger

	mu            sync.Mutex
	goals         []string
	relationships map[board.Power]Relationship
	diary         []DiaryNote
	journal       []string
	directive     string
}

// New creates an agent for a power. Relationships start Neutral toward
// everyone.
func New(power board.Power, client llm.Client, log zerolog.Logger) *Agent {
	return &Agent{
		power:         power,
		client:        client,
		log:           log.With().Str("power", string(power)).Str("model", client.Model()).Logger(),
		relationships: make(map[board.Power]Relationship),
	}
}

// OpeningGoals are the objectives an agent starts a run with, carried in
// every prompt until the first post-phase state revision replaces them.
func OpeningGoals(power board.Power) []string {
	base := []string{"Hold every home supply center.", "Reach 18 supply centers."}
	openings := map[board.Power]string{
		board.Austria: "Secure SER and GRE before Italy or Turkey can.",
		board.England: "Take NWY and land a foothold on the continent.",
		board.France:  "Take SPA and POR, then contest BEL.",
		board.Germany: "Take HOL and DEN while keeping MUN covered.",
		board.Italy:   "Take TUN and contest Austria's hold on TRI.",
		board.Russia:  "Take SWE and RUM without provoking both flanks at once.",
		board.Turkey:  "Take BUL and control the Black Sea.",
	}
	if g, ok := openings[power]; ok {
		return append(base, g)
	}
	return base
}

// Power returns the power this agent plays.
func (a *Agent) Power() board.Power { return a.power }

// Model returns the model identifier behind this agent.
func (a *Agent) Model() string { return a.client.Model() }

// Goals returns a copy of the agent's current goals.
func (a *Agent) Goals() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.goals...)
}

// SetGoals replaces the agent's goals.
func (a *Agent) SetGoals(goals []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goals = append([]string(nil), goals...)
}

// Directive returns the strategy directive from the last planning pass.
func (a *Agent) Directive() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.directive
}

// AddJournal appends a free-form note to the agent's journal.
func (a *Agent) AddJournal(note string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.journal = append(a.journal, note)
}

// Journal returns a copy of the agent's journal notes.
func (a *Agent) Journal() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.journal...)
}

// RelationshipLines renders the recorded stances as prompt lines, sorted by
// power.
func (a *Agent) RelationshipLines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	powers := make([]board.Power, 0, len(a.relationships))
	for p := range a.relationships {
		powers = append(powers, p)
	}
	sort.Slice(powers, func(i, j int) bool { return powers[i] < powers[j] })
	lines := make([]string, 0, len(powers))
	for _, p := range powers {
		lines = append(lines, fmt.Sprintf("%s: %s", p, a.relationships[p]))
	}
	return lines
}

// OrderResult is the outcome of one order-generation pass.
type OrderResult struct {
	Orders   []string
	Fallback bool   // true when hold orders were substituted
	RawReply string // model text, kept for the order log
}

// GenerateOrders asks the model for orders given the composed board context
// and the server's legal-order lists. Replies that cannot be decoded, or that
// contain orders the server did not offer, fall back to holding every unit.
// The returned error is non-nil only when the fallback itself is empty.
func (a *Agent) GenerateOrders(ctx context.Context, phase, boardContext string, possible map[string][]string) (*OrderResult, error) {
	prompt, err := renderOrdersPrompt(ordersPromptData{
		Power:         string(a.power),
		Phase:         phase,
		Context:       boardContext,
		Goals:         a.Goals(),
		Relationships: a.RelationshipLines(),
		Diary:         a.DiaryText(),
		Directive:     a.Directive(),
	})
	if err != nil {
		return nil, fmt.Errorf("render orders prompt: %w", err)
	}

	reply, err := a.client.Complete(ctx, llm.Request{System: systemPrompt(string(a.power)), Prompt: prompt})
	if err != nil {
		a.log.Warn().Err(err).Str("phase", phase).Msg("order generation failed, holding all units")
		return a.fallbackOrders(possible, "")
	}

	parsed, err := llm.ParseOrders(reply)
	if err != nil {
		a.log.Warn().Err(err).Str("phase", phase).Msg("order reply undecodable, holding all units")
		return a.fallbackOrders(possible, reply)
	}

	valid, rejected := filterOrders(parsed.Orders, possible)
	if len(rejected) > 0 {
		a.log.Warn().Strs("rejected", rejected).Str("phase", phase).Msg("model proposed illegal orders")
	}
	if len(valid) == 0 {
		return a.fallbackOrders(possible, reply)
	}
	return &OrderResult{Orders: valid, RawReply: reply}, nil
}

// filterOrders keeps the orders that appear verbatim in the server's legal
// lists, at most one per location.
func filterOrders(proposed []string, possible map[string][]string) (valid, rejected []string) {
	ordered := make(map[string]bool, len(possible))
	for _, order := range proposed {
		order = strings.TrimSpace(order)
		loc, ok := orderLocation(order, possible)
		if !ok || ordered[loc] {
			rejected = append(rejected, order)
			continue
		}
		ordered[loc] = true
		valid = append(valid, order)
	}
	return valid, rejected
}

// orderLocation finds which location's legal list contains the order.
func orderLocation(order string, possible map[string][]string) (string, bool) {
	for loc, orders := range possible {
		for _, o := range orders {
			if o == order {
				return loc, true
			}
		}
	}
	return "", false
}

// fallbackOrders holds every unit. Locations with no hold in their legal list
// (retreat and build phases) take the first legal order instead.
func (a *Agent) fallbackOrders(possible map[string][]string, rawReply string) (*OrderResult, error) {
	locs := make([]string, 0, len(possible))
	for loc := range possible {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	var orders []string
	for _, loc := range locs {
		legal := possible[loc]
		if len(legal) == 0 {
			continue
		}
		pick := legal[0]
		for _, o := range legal {
			if strings.HasSuffix(o, " H") {
				pick = o
				break
			}
		}
		orders = append(orders, pick)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("no legal orders to fall back to for %s", a.power)
	}
	return &OrderResult{Orders: orders, Fallback: true, RawReply: rawReply}, nil
}

// Negotiate asks the model for one press message given the visible
// conversation so far. forbidden lists recipients this agent may not message
// this round.
func (a *Agent) Negotiate(ctx context.Context, phase, boardContext string, conversation []string, forbidden []string) (*llm.MessageReply, error) {
	prompt, err := renderMessagePrompt(messagePromptData{
		Power:         string(a.power),
		Phase:         phase,
		Context:       boardContext,
		Goals:         a.Goals(),
		Relationships: a.RelationshipLines(),
		Diary:         a.DiaryText(),
		Conversation:  conversation,
		Forbidden:     forbidden,
	})
	if err != nil {
		return nil, fmt.Errorf("render message prompt: %w", err)
	}

	reply, err := a.client.Complete(ctx, llm.Request{System: systemPrompt(string(a.power)), Prompt: prompt})
	if err != nil {
		return nil, err
	}
	msg, err := llm.ParseMessage(reply)
	if err != nil {
		return nil, fmt.Errorf("parse negotiation reply: %w", err)
	}
	for _, f := range forbidden {
		if msg.MessageType == "private" && msg.Recipient == f {
			return nil, fmt.Errorf("recipient %s is awaiting a reply", f)
		}
	}
	if msg.MessageType == "private" {
		a.RecordDiary(phase, "negotiation", fmt.Sprintf("messaged %s: %s", msg.Recipient, msg.Content))
	} else {
		a.RecordDiary(phase, "negotiation", "broadcast: "+msg.Content)
	}
	return msg, nil
}

// Plan runs one planning pass: the model produces a strategy directive that
// later order prompts carry.
func (a *Agent) Plan(ctx context.Context, phase, boardContext string) error {
	prompt, err := renderPlanningPrompt(planningPromptData{
		Power:         string(a.power),
		Phase:         phase,
		Context:       boardContext,
		Goals:         a.Goals(),
		Relationships: a.RelationshipLines(),
		Journal:       a.Journal(),
	})
	if err != nil {
		return fmt.Errorf("render planning prompt: %w", err)
	}

	reply, err := a.client.Complete(ctx, llm.Request{System: systemPrompt(string(a.power)), Prompt: prompt})
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.directive = strings.TrimSpace(reply)
	a.mu.Unlock()
	a.log.Debug().Str("phase", phase).Msg("planning directive updated")
	return nil
}

// stateUpdate is the structured state-revision payload.
type stateUpdate struct {
	Goals         []string          `json:"goals"`
	Relationships map[string]string `json:"relationships"`
	Journal       string            `json:"journal"`
}

// UpdateState runs the post-phase revision: the model rewrites goals and
// stances toward the other powers given how the phase went. Partial replies
// apply partially; a reply with no recoverable JSON leaves the state as it
// was.
func (a *Agent) UpdateState(ctx context.Context, phase, boardContext string) error {
	prompt, err := renderStatePrompt(statePromptData{
		Power:         string(a.power),
		Phase:         phase,
		Context:       boardContext,
		Goals:         a.Goals(),
		Relationships: a.RelationshipLines(),
		Diary:         a.DiaryText(),
	})
	if err != nil {
		return fmt.Errorf("render state prompt: %w", err)
	}

	reply, err := a.client.Complete(ctx, llm.Request{System: systemPrompt(string(a.power)), Prompt: prompt})
	if err != nil {
		return err
	}
	raw, err := llm.ExtractJSON(reply)
	if err != nil {
		return fmt.Errorf("state reply: %w", err)
	}
	var upd stateUpdate
	if err := json.Unmarshal([]byte(raw), &upd); err != nil {
		return fmt.Errorf("decode state reply: %w", err)
	}

	if len(upd.Goals) > 0 {
		a.SetGoals(upd.Goals)
	}
	for power, label := range upd.Relationships {
		a.SetRelationship(board.Power(strings.ToUpper(power)), ParseRelationship(label))
	}
	if note := strings.TrimSpace(upd.Journal); note != "" {
		a.AddJournal(note)
	}
	a.RecordDiary(phase, "state", fmt.Sprintf("revised %d goals, %d stances", len(upd.Goals), len(upd.Relationships)))
	a.log.Debug().Str("phase", phase).Int("goals", len(upd.Goals)).Int("stances", len(upd.Relationships)).Msg("agent state revised")
	return nil
}
