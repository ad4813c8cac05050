package automata

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// State identifies one place in an automaton graph.
//
// States carry no data and compare by identity only: two states minted by
// separate NewState calls are never equal, even when the nodes they label are
// structurally indistinguishable. The zero State is never minted.
type State struct {
	id uuid.UUID
}

// NewState mints a fresh, globally unique state identity.
func NewState() State {
	return State{id: uuid.New()}
}

// IsZero reports whether s is the zero State.
func (s State) IsZero() bool {
	return s.id == uuid.Nil
}

// String returns the textual form of the identity.
func (s State) String() string {
	return s.id.String()
}

// sortStates orders states by their identity bytes so that map-backed tables
// enumerate deterministically.
func sortStates(states []State) {
	sort.Slice(states, func(i, j int) bool {
		return bytes.Compare(states[i].id[:], states[j].id[:]) < 0
	})
}
