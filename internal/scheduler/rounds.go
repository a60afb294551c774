// Package scheduler drives the per-phase agent loops: negotiation rounds,
// planning, and order collection. Each loop fans out one task per live power
// and tolerates individual agent failures.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/efreeman/statecraft/internal/agent"
	"github.com/efreeman/statecraft/internal/model"
	"github.com/efreeman/statecraft/internal/repository"
	"github.com/efreeman/statecraft/pkg/board"
)

// Scheduler coordinates agents through the phases of one run.
type Scheduler struct {
	agents map[board.Power]*agent.Agent
	msgs   repository.MessageRepository
	orders repository.OrderRepository
	stats  *Stats
	log    zerolog.Logger
	rounds int
}

// New creates a scheduler over a set of agents. rounds is the negotiation
// round count per movement phase.
func New(agents map[board.Power]*agent.Agent, msgs repository.MessageRepository, orders repository.OrderRepository, rounds int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		agents: agents,
		msgs:   msgs,
		orders: orders,
		stats:  NewStats(),
		log:    log,
		rounds: rounds,
	}
}

// Stats exposes the run's failure counters.
func (s *Scheduler) Stats() *Stats { return s.stats }

// sortedPowers returns the scheduler's powers in standard order so fan-out
// and persistence happen in a stable sequence.
func (s *Scheduler) sortedPowers() []board.Power {
	powers := make([]board.Power, 0, len(s.agents))
	for p := range s.agents {
		powers = append(powers, p)
	}
	sort.Slice(powers, func(i, j int) bool { return powers[i] < powers[j] })
	return powers
}

// roundMessage pairs a produced message with its sender for collection.
type roundMessage struct {
	sender board.Power
	msg    model.NegotiationMessage
}

// RunNegotiations plays the configured number of negotiation rounds. Each
// round asks every power for one message concurrently, then persists the
// results. A power that privately messaged someone may not message the same
// recipient again until that recipient has written back.
func (s *Scheduler) RunNegotiations(ctx context.Context, phaseID, phase string, contexts map[board.Power]string) ([]model.NegotiationMessage, error) {
	var all []model.NegotiationMessage
	// awaiting[A][B] means A sent B a private message and has had no reply.
	awaiting := make(map[board.Power]map[string]bool)

	for round := 1; round <= s.rounds; round++ {
		var (
			mu      sync.Mutex
			results []roundMessage
			wg      sync.WaitGroup
		)
		for _, power := range s.sortedPowers() {
			a := s.agents[power]
			conversation := visibleTranscript(all, power)
			forbidden := sortedKeys(awaiting[power])

			wg.Add(1)
			go func(power board.Power, a *agent.Agent) {
				defer wg.Done()
				msg, err := a.Negotiate(ctx, phase, contexts[power], conversation, forbidden)
				if err != nil {
					s.stats.RecordLLMFailure(a.Model())
					s.log.Warn().Err(err).Str("power", string(power)).Int("round", round).Msg("negotiation message failed")
					return
				}
				mu.Lock()
				results = append(results, roundMessage{sender: power, msg: model.NegotiationMessage{
					PhaseID:   phaseID,
					Round:     round,
					Sender:    string(power),
					Recipient: msg.Recipient,
					Content:   msg.Content,
				}})
				mu.Unlock()
			}(power, a)
		}
		wg.Wait()

		// Persist in sender order so transcripts replay deterministically.
		sort.Slice(results, func(i, j int) bool { return results[i].sender < results[j].sender })
		for _, r := range results {
			stored, err := s.msgs.Create(ctx, phaseID, round, r.msg.Sender, r.msg.Recipient, r.msg.Content)
			if err != nil {
				return all, fmt.Errorf("persist negotiation message: %w", err)
			}
			all = append(all, *stored)
		}

		// Messages within a round are simultaneous: clear answered waits
		// first, then register new ones. A mutual exchange in the same round
		// counts as answered on both sides.
		wrote := make(map[board.Power]map[string]bool)
		for _, r := range results {
			if r.msg.Recipient == "" {
				continue
			}
			if wrote[r.sender] == nil {
				wrote[r.sender] = make(map[string]bool)
			}
			wrote[r.sender][r.msg.Recipient] = true
			delete(awaiting[board.Power(r.msg.Recipient)], string(r.sender))
		}
		for sender, recipients := range wrote {
			for recipient := range recipients {
				if wrote[board.Power(recipient)][string(sender)] {
					continue
				}
				if awaiting[sender] == nil {
					awaiting[sender] = make(map[string]bool)
				}
				awaiting[sender][recipient] = true
			}
		}
	}
	return all, nil
}

// RunPlanning runs one planning pass per power concurrently.
func (s *Scheduler) RunPlanning(ctx context.Context, phase string, contexts map[board.Power]string) {
	var wg sync.WaitGroup
	for _, power := range s.sortedPowers() {
		a := s.agents[power]
		wg.Add(1)
		go func(power board.Power, a *agent.Agent) {
			defer wg.Done()
			if err := a.Plan(ctx, phase, contexts[power]); err != nil {
				s.stats.RecordLLMFailure(a.Model())
				s.log.Warn().Err(err).Str("power", string(power)).Msg("planning failed")
			}
		}(power, a)
	}
	wg.Wait()
}

// RunStateUpdates runs one post-phase state revision per power concurrently.
// Each agent rewrites its goals and stances given the resolved board.
func (s *Scheduler) RunStateUpdates(ctx context.Context, phase string, contexts map[board.Power]string) {
	var wg sync.WaitGroup
	for _, power := range s.sortedPowers() {
		a := s.agents[power]
		wg.Add(1)
		go func(power board.Power, a *agent.Agent) {
			defer wg.Done()
			if err := a.UpdateState(ctx, phase, contexts[power]); err != nil {
				s.stats.RecordLLMFailure(a.Model())
				s.log.Warn().Err(err).Str("power", string(power)).Msg("state revision failed")
			}
		}(power, a)
	}
	wg.Wait()
}

// RunOrders collects orders from every power concurrently and persists them.
// Fallback substitutions count as decoding errors for the power.
func (s *Scheduler) RunOrders(ctx context.Context, phaseID, phase string, contexts map[board.Power]string, possible map[board.Power]map[string][]string) (map[board.Power][]string, error) {
	var (
		mu        sync.Mutex
		collected = make(map[board.Power][]string)
		sets      []model.OrderSet
		wg        sync.WaitGroup
	)
	for _, power := range s.sortedPowers() {
		a := s.agents[power]
		legal := possible[power]
		if len(legal) == 0 {
			continue
		}
		wg.Add(1)
		go func(power board.Power, a *agent.Agent) {
			defer wg.Done()
			res, err := a.GenerateOrders(ctx, phase, contexts[power], legal)
			if err != nil {
				s.stats.RecordLLMFailure(a.Model())
				s.log.Error().Err(err).Str("power", string(power)).Msg("no orders produced")
				return
			}
			if res.Fallback {
				s.stats.RecordDecodingError(string(power))
			}
			encoded, err := json.Marshal(res.Orders)
			if err != nil {
				s.log.Error().Err(err).Str("power", string(power)).Msg("encode orders")
				return
			}
			mu.Lock()
			collected[power] = res.Orders
			sets = append(sets, model.OrderSet{
				PhaseID:  phaseID,
				Power:    string(power),
				Model:    a.Model(),
				Orders:   encoded,
				Fallback: res.Fallback,
				RawReply: res.RawReply,
			})
			mu.Unlock()
		}(power, a)
	}
	wg.Wait()

	sort.Slice(sets, func(i, j int) bool { return sets[i].Power < sets[j].Power })
	for i := range sets {
		if err := s.orders.Save(ctx, &sets[i]); err != nil {
			return collected, fmt.Errorf("persist order set: %w", err)
		}
	}
	return collected, nil
}

// visibleTranscript renders the messages a power may see as prompt lines.
func visibleTranscript(all []model.NegotiationMessage, power board.Power) []string {
	var lines []string
	for _, m := range all {
		if m.Recipient != "" && m.Sender != string(power) && m.Recipient != string(power) {
			continue
		}
		scope := "GLOBAL"
		if m.Recipient != "" {
			scope = "to " + m.Recipient
		}
		lines = append(lines, fmt.Sprintf("[round %d] %s (%s): %s", m.Round, m.Sender, scope, m.Content))
	}
	return lines
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
