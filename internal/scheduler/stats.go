package scheduler

import "sync"

// Stats aggregates failure counters across a run, keyed by power and by
// model. Fan-out goroutines record concurrently.
type Stats struct {
	mu             sync.Mutex
	decodingErrors map[string]int // power -> fallback order substitutions
	llmFailures    map[string]int // model -> failed completions
}

// NewStats creates an empty counter set.
func NewStats() *Stats {
	return &Stats{
		decodingErrors: make(map[string]int),
		llmFailures:    make(map[string]int),
	}
}

// RecordDecodingError counts one order reply that could not be used.
func (s *Stats) RecordDecodingError(power string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decodingErrors[power]++
}

// RecordLLMFailure counts one failed completion for a model.
func (s *Stats) RecordLLMFailure(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llmFailures[model]++
}

// DecodingErrors returns a copy of the per-power fallback counters.
func (s *Stats) DecodingErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.decodingErrors))
	for k, v := range s.decodingErrors {
		out[k] = v
	}
	return out
}

// LLMFailures returns a copy of the per-model failure counters.
func (s *Stats) LLMFailures() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.llmFailures))
	for k, v := range s.llmFailures {
		out[k] = v
	}
	return out
}
