package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// MemStore is an in-memory implementation of Store[U].
//
// Data is lost when the process exits. MemStore is safe for concurrent use.
type MemStore[U any] struct {
	mu          sync.RWMutex
	runs        map[string][]TokenRecord[U] // runID -> tokens ordered by Seq
	checkpoints map[string]Checkpoint
}

// NewMemStore creates an empty in-memory store.
//
// Example:
//
//	st := store.NewMemStore[rune]()
//	tok, _ := lex.NewTokenizer[rune](lex.WithStore[rune](st))
func NewMemStore[U any]() *MemStore[U] {
	return &MemStore[U]{
		runs:        make(map[string][]TokenRecord[U]),
		checkpoints: make(map[string]Checkpoint),
	}
}

// SaveToken inserts rec keeping the run ordered by Seq.
func (m *MemStore[U]) SaveToken(_ context.Context, runID string, rec TokenRecord[U]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.Units = slices.Clone(rec.Units)
	records := m.runs[runID]
	i, found := slices.BinarySearchFunc(records, rec.Seq, func(r TokenRecord[U], seq int) int {
		return r.Seq - seq
	})
	if found {
		records[i] = rec
		return nil
	}
	m.runs[runID] = slices.Insert(records, i, rec)
	return nil
}

// LoadRun returns a copy of the run's journal.
func (m *MemStore[U]) LoadRun(_ context.Context, runID string) ([]TokenRecord[U], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.runs[runID]
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	out := make([]TokenRecord[U], len(records))
	for i, r := range records {
		r.Units = slices.Clone(r.Units)
		out[i] = r
	}
	return out, nil
}

// LoadLatest returns the last token of the run.
func (m *MemStore[U]) LoadLatest(_ context.Context, runID string) (TokenRecord[U], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.runs[runID]
	if len(records) == 0 {
		return TokenRecord[U]{}, ErrNotFound
	}
	latest := records[len(records)-1]
	latest.Units = slices.Clone(latest.Units)
	return latest, nil
}

// SaveCheckpoint stores cp under cp.ID.
func (m *MemStore[U]) SaveCheckpoint(_ context.Context, cp Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[cp.ID] = cp
	return nil
}

// LoadCheckpoint returns the checkpoint named cpID.
func (m *MemStore[U]) LoadCheckpoint(_ context.Context, cpID string) (Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[cpID]
	if !ok {
		return Checkpoint{}, ErrNotFound
	}
	return cp, nil
}

type serializableMemStore[U any] struct {
	Runs        map[string][]TokenRecord[U] `json:"runs"`
	Checkpoints map[string]Checkpoint       `json:"checkpoints"`
}

// MarshalJSON serializes the store contents, so a MemStore can be written to
// disk and reloaded later.
func (m *MemStore[U]) MarshalJSON() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return json.Marshal(serializableMemStore[U]{
		Runs:        m.runs,
		Checkpoints: m.checkpoints,
	})
}

// UnmarshalJSON replaces the store contents with data.
func (m *MemStore[U]) UnmarshalJSON(data []byte) error {
	var s serializableMemStore[U]
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = s.Runs
	if m.runs == nil {
		m.runs = make(map[string][]TokenRecord[U])
	}
	for runID, records := range m.runs {
		slices.SortFunc(records, func(a, b TokenRecord[U]) int { return a.Seq - b.Seq })
		m.runs[runID] = records
	}
	m.checkpoints = s.Checkpoints
	if m.checkpoints == nil {
		m.checkpoints = make(map[string]Checkpoint)
	}
	return nil
}
