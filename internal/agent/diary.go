package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/efreeman/statecraft/internal/llm"
)

// consolidateThreshold is how many diary notes accumulate before the diary
// is condensed into a single summary.
const consolidateThreshold = 30

// DiaryNote is one private diary entry.
type DiaryNote struct {
	Phase   string
	Kind    string // negotiation, orders, summary
	Content string
}

// RecordDiary appends a note to the agent's diary.
func (a *Agent) RecordDiary(phase, kind, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.diary = append(a.diary, DiaryNote{Phase: phase, Kind: kind, Content: content})
}

// Diary returns a copy of the agent's diary.
func (a *Agent) Diary() []DiaryNote {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]DiaryNote(nil), a.diary...)
}

// DiaryText renders the diary for inclusion in prompts.
func (a *Agent) DiaryText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var b strings.Builder
	for _, n := range a.diary {
		fmt.Fprintf(&b, "[%s/%s] %s\n", n.Phase, n.Kind, n.Content)
	}
	return b.String()
}

// MaybeConsolidateDiary condenses the diary into one summary note when it has
// grown past the threshold. Returns the summary and true when consolidation
// ran, so the caller can mirror it into the persisted diary. A failed
// consolidation leaves the diary intact.
func (a *Agent) MaybeConsolidateDiary(ctx context.Context, phase string) (string, bool, error) {
	a.mu.Lock()
	if len(a.diary) < consolidateThreshold {
		a.mu.Unlock()
		return "", false, nil
	}
	entries := append([]DiaryNote(nil), a.diary...)
	a.mu.Unlock()

	prompt, err := renderConsolidatePrompt(consolidatePromptData{Power: string(a.power), Entries: entries})
	if err != nil {
		return "", false, fmt.Errorf("render consolidate prompt: %w", err)
	}
	summary, err := a.client.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return "", false, fmt.Errorf("consolidate diary: %w", err)
	}
	summary = strings.TrimSpace(summary)

	a.mu.Lock()
	a.diary = []DiaryNote{{Phase: phase, Kind: "summary", Content: summary}}
	a.mu.Unlock()
	a.log.Info().Int("condensed", len(entries)).Msg("diary consolidated")
	return summary, true, nil
}
