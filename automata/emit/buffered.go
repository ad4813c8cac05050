package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory, grouped by
// run ID.
//
// It is intended for tests and debugging: every event is retained until
// Clear is called.
//
// Example usage:
//
//	emitter := emit.NewBufferedEmitter()
//	tok, _ := lex.NewTokenizer[rune](lex.WithEmitter(emitter))
//	tok.Run(ctx, "run-001", lex.FromString(input))
//
//	tokens := emitter.GetHistoryWithFilter("run-001", emit.HistoryFilter{Msg: "token"})
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // runID -> events
}

// HistoryFilter specifies criteria for filtering execution history.
//
// All fields are optional; set fields are combined with AND logic.
//
//	minSeq, maxSeq := 5, 10
//	filter := emit.HistoryFilter{Rule: "number", MinSeq: &minSeq, MaxSeq: &maxSeq}
type HistoryFilter struct {
	Rule   string // Filter by rule name (empty = no filter)
	Msg    string // Filter by message (empty = no filter)
	MinSeq *int   // Minimum token index (nil = no filter)
	MaxSeq *int   // Maximum token index (nil = no filter)
}

// NewBufferedEmitter creates an empty BufferedEmitter. Safe for concurrent
// use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores an event in the buffer.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// GetHistory returns a copy of every event for runID in emission order.
// Returns an empty slice if none exist.
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	return b.GetHistoryWithFilter(runID, HistoryFilter{})
}

// GetHistoryWithFilter returns the events for runID that match filter, in
// emission order. Returns an empty slice if none match.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := []Event{}
	for _, event := range b.events[runID] {
		if filter.matches(event) {
			result = append(result, event)
		}
	}
	return result
}

func (f HistoryFilter) matches(event Event) bool {
	if f.Rule != "" && event.Rule != f.Rule {
		return false
	}
	if f.Msg != "" && event.Msg != f.Msg {
		return false
	}
	if f.MinSeq != nil && event.Seq < *f.MinSeq {
		return false
	}
	if f.MaxSeq != nil && event.Seq > *f.MaxSeq {
		return false
	}
	return true
}

// Clear removes stored events for runID, or every run when runID is empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, runID)
}
