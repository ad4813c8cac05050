package automata

import (
	"iter"
	"slices"
)

// Configuration is one simultaneously active parse position.
type Configuration[C any] struct {
	State   State
	Context C
}

// Option configures an Automaton.
type Option[C any] func(*options[C])

type options[C any] struct {
	equal func(a, b C) bool
}

// WithContextEqual lets Advance collapse configurations that share both state
// and context. Without it, configurations are never collapsed, since two
// configurations at the same state with different contexts are distinct.
func WithContextEqual[C any](equal func(a, b C) bool) Option[C] {
	return func(o *options[C]) {
		o.equal = equal
	}
}

// Automaton is the run-time value of a graph: a frozen state table plus the
// set of currently active configurations.
//
// The configuration set of a live automaton is never empty. Advance produces
// a new Automaton and leaves the receiver valid, which makes speculative and
// backtracking use cheap.
//
// Type parameter U is the input unit type, C the context type.
type Automaton[U, C any] struct {
	graph   *Graph[U, C]
	equal   func(a, b C) bool
	current []Configuration[C]
}

// New compiles the graph reachable from root and starts at (root, base).
//
// Transitions added to nodes after New returns are not observed by the
// returned automaton. New panics if root is nil or any reachable transition
// has a nil destination or predicate.
func New[U, C any](root Node[U, C], base C, opts ...Option[C]) *Automaton[U, C] {
	return newAutomaton(compile(root), base, opts)
}

// FromNFA starts a finite automaton at root. Configurations at the same state
// are collapsed since Unit contexts are always equal.
func FromNFA[U any](root *NFA[U]) *Automaton[U, Unit] {
	if root == nil {
		panic("automata: nil root node")
	}
	return New[U, Unit](root, Unit{}, WithContextEqual(func(Unit, Unit) bool { return true }))
}

// FromPDA starts a push-down automaton at root with base as the initial
// stack. Configurations with equal stacks at the same state are collapsed.
func FromPDA[U any, M comparable](root *PDA[U, M], base Stack[M]) *Automaton[U, Stack[M]] {
	if root == nil {
		panic("automata: nil root node")
	}
	return New[U, Stack[M]](root, base, WithContextEqual(StackEqual[M]))
}

func newAutomaton[U, C any](g *Graph[U, C], base C, opts []Option[C]) *Automaton[U, C] {
	var o options[C]
	for _, opt := range opts {
		opt(&o)
	}
	return &Automaton[U, C]{
		graph:   g,
		equal:   o.equal,
		current: []Configuration[C]{{State: g.root, Context: base}},
	}
}

// IsPassing reports whether any active configuration sits on a terminal
// state.
func (a *Automaton[U, C]) IsPassing() bool {
	for _, cfg := range a.current {
		if a.graph.Terminal(cfg.State) {
			return true
		}
	}
	return false
}

// PassingContexts returns the contexts of every configuration currently on a
// terminal state, in configuration order. A push-down caller uses it to
// inspect the final stack of whichever accepting path matched.
func (a *Automaton[U, C]) PassingContexts() []C {
	var out []C
	for _, cfg := range a.current {
		if a.graph.Terminal(cfg.State) {
			out = append(out, cfg.Context)
		}
	}
	return out
}

// Advance evaluates every transition of every active configuration against
// unit and returns the automaton holding all resulting configurations.
//
// Returns ok == false when no transition accepts from any configuration;
// this is distinct from succeeding onto non-terminal states.
func (a *Automaton[U, C]) Advance(unit U) (*Automaton[U, C], bool) {
	next := make([]Configuration[C], 0, len(a.current))
	var index map[State][]int
	if a.equal != nil {
		index = make(map[State][]int)
	}

	for _, cfg := range a.current {
		for _, e := range a.graph.transitions[cfg.State] {
			accepted, ctx := e.when(unit, cfg.Context)
			if !accepted {
				continue
			}
			if index != nil && a.seen(next, index[e.to], ctx) {
				continue
			}
			if index != nil {
				index[e.to] = append(index[e.to], len(next))
			}
			next = append(next, Configuration[C]{State: e.to, Context: ctx})
		}
	}

	if len(next) == 0 {
		return nil, false
	}
	return &Automaton[U, C]{graph: a.graph, equal: a.equal, current: next}, true
}

func (a *Automaton[U, C]) seen(next []Configuration[C], at []int, ctx C) bool {
	for _, i := range at {
		if a.equal(next[i].Context, ctx) {
			return true
		}
	}
	return false
}

// Contains reports whether the automaton accepts exactly units.
//
// With no units it reports IsPassing of the receiver.
func (a *Automaton[U, C]) Contains(units []U) bool {
	return a.ContainsSeq(slices.Values(units))
}

// ContainsSeq is Contains over an iterator. Iteration stops at the first unit
// with no viable continuation.
func (a *Automaton[U, C]) ContainsSeq(units iter.Seq[U]) bool {
	cur := a
	for u := range units {
		next, ok := cur.Advance(u)
		if !ok {
			return false
		}
		cur = next
	}
	return cur.IsPassing()
}

// Remap returns an automaton over a copy of the graph in which every state,
// reached or not, has a fresh identity. Active configurations are carried
// over. The result accepts exactly the same sequences and shares no state
// with the receiver.
func (a *Automaton[U, C]) Remap() *Automaton[U, C] {
	g, mapping := a.graph.remap()
	current := make([]Configuration[C], len(a.current))
	for i, cfg := range a.current {
		current[i] = Configuration[C]{State: mapping[cfg.State], Context: cfg.Context}
	}
	return &Automaton[U, C]{graph: g, equal: a.equal, current: current}
}

// Configurations returns a copy of the active configuration set.
func (a *Automaton[U, C]) Configurations() []Configuration[C] {
	return slices.Clone(a.current)
}

// Width returns the number of active configurations.
func (a *Automaton[U, C]) Width() int { return len(a.current) }

// Root returns the start state of the backing graph.
func (a *Automaton[U, C]) Root() State { return a.graph.root }

// States returns every state of the backing graph in a stable order.
func (a *Automaton[U, C]) States() []State { return a.graph.States() }

// Graph returns a copy of the backing table. Editing the copy does not affect
// the receiver.
func (a *Automaton[U, C]) Graph() *Graph[U, C] { return a.graph.clone() }

// Terminal reports whether s is terminal in the backing graph.
func (a *Automaton[U, C]) Terminal(s State) bool { return a.graph.Terminal(s) }

// Reset returns an automaton over the same graph started afresh at the root
// with base as context.
func (a *Automaton[U, C]) Reset(base C) *Automaton[U, C] {
	return &Automaton[U, C]{
		graph:   a.graph,
		equal:   a.equal,
		current: []Configuration[C]{{State: a.graph.root, Context: base}},
	}
}

// Machine is the context-erased view of an automaton used by scanners, which
// only need to step and test acceptance. Every *Automaton implements it.
type Machine[U any] interface {
	Step(unit U) (Machine[U], bool)
	IsPassing() bool
}

// Step implements Machine.
func (a *Automaton[U, C]) Step(unit U) (Machine[U], bool) {
	next, ok := a.Advance(unit)
	if !ok {
		return nil, false
	}
	return next, true
}
