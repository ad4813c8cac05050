package emit

import (
	"sync"
	"testing"
)

// TestBufferedEmitter_History verifies storage and run isolation.
func TestBufferedEmitter_History(t *testing.T) {
	emitter := NewBufferedEmitter()

	emitter.Emit(Event{RunID: "run-001", Msg: "match"})
	emitter.Emit(Event{RunID: "run-002", Msg: "match"})
	emitter.Emit(Event{RunID: "run-001", Msg: "no_match"})

	history := emitter.GetHistory("run-001")
	if len(history) != 2 {
		t.Fatalf("expected 2 events for run-001, got %d", len(history))
	}
	if history[0].Msg != "match" || history[1].Msg != "no_match" {
		t.Errorf("expected emission order, got %q then %q", history[0].Msg, history[1].Msg)
	}

	history[0].Msg = "mutated"
	if emitter.GetHistory("run-001")[0].Msg != "match" {
		t.Error("GetHistory should return a copy")
	}

	unknown := emitter.GetHistory("unknown")
	if unknown == nil || len(unknown) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", unknown)
	}
}

// TestBufferedEmitter_Filter verifies AND-combined filter fields.
func TestBufferedEmitter_Filter(t *testing.T) {
	emitter := NewBufferedEmitter()
	for i, rule := range []string{"ident", "number", "ident", "space", "ident"} {
		emitter.Emit(Event{RunID: "run", Seq: i, Rule: rule, Msg: "token"})
	}
	emitter.Emit(Event{RunID: "run", Msg: "run_complete"})

	minSeq, maxSeq := 1, 3

	tests := []struct {
		name   string
		filter HistoryFilter
		want   int
	}{
		{"empty filter", HistoryFilter{}, 6},
		{"by rule", HistoryFilter{Rule: "ident"}, 3},
		{"by msg", HistoryFilter{Msg: "run_complete"}, 1},
		{"by range", HistoryFilter{MinSeq: &minSeq, MaxSeq: &maxSeq}, 3},
		{"rule and range", HistoryFilter{Rule: "ident", MinSeq: &minSeq, MaxSeq: &maxSeq}, 1},
		{"no match", HistoryFilter{Rule: "string"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := emitter.GetHistoryWithFilter("run", tt.filter)
			if len(got) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(got))
			}
		})
	}
}

// TestBufferedEmitter_Clear verifies per-run and global clearing.
func TestBufferedEmitter_Clear(t *testing.T) {
	emitter := NewBufferedEmitter()
	emitter.Emit(Event{RunID: "a", Msg: "x"})
	emitter.Emit(Event{RunID: "b", Msg: "x"})

	emitter.Clear("a")
	if len(emitter.GetHistory("a")) != 0 || len(emitter.GetHistory("b")) != 1 {
		t.Error("Clear(\"a\") should remove only run a")
	}

	emitter.Clear("")
	if len(emitter.GetHistory("b")) != 0 {
		t.Error("Clear(\"\") should remove every run")
	}
}

// TestBufferedEmitter_Concurrent verifies concurrent Emit is safe.
func TestBufferedEmitter_Concurrent(t *testing.T) {
	emitter := NewBufferedEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emitter.Emit(Event{RunID: "run", Seq: i, Msg: "token"})
		}(i)
	}
	wg.Wait()

	if got := len(emitter.GetHistory("run")); got != 50 {
		t.Errorf("expected 50 events, got %d", got)
	}
}
