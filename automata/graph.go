package automata

// edge is the table form of a Transition: the destination is stored by
// identity so that the table can be cloned and remapped without touching the
// caller's nodes.
type edge[U, C any] struct {
	to   State
	when Predicate[U, C]
}

// Graph is the state table backing an automaton.
//
// It maps every registered state to its outgoing edges and records which
// states are terminal. A Graph may be built directly with Connect and Mark,
// or compiled from a root Node by New.
//
// A Graph is not safe for concurrent mutation. Automata created from it hold
// their own snapshot, so later mutation never affects them.
//
// Example:
//
//	g := automata.NewGraph[rune, automata.Unit]()
//	mid, end := automata.NewState(), automata.NewState()
//	isA := automata.When(func(r rune) bool { return r == 'a' })
//	isB := automata.When(func(r rune) bool { return r == 'b' })
//	g.Connect(g.Root(), mid, isA)
//	g.Connect(mid, mid, isA)
//	g.Connect(mid, end, isB)
//	g.Mark(end, true)
//	m := g.Automaton(automata.Unit{})
type Graph[U, C any] struct {
	root        State
	transitions map[State][]edge[U, C]
	terminals   map[State]struct{}
}

// NewGraph creates a table holding a single, non-terminal root state.
func NewGraph[U, C any]() *Graph[U, C] {
	root := NewState()
	return &Graph[U, C]{
		root:        root,
		transitions: map[State][]edge[U, C]{root: nil},
		terminals:   make(map[State]struct{}),
	}
}

// Root returns the state evaluation starts from.
func (g *Graph[U, C]) Root() State { return g.root }

// AddState registers s without connecting it. Registering a state twice is a
// no-op.
func (g *Graph[U, C]) AddState(s State) {
	if s.IsZero() {
		panic("automata: zero state")
	}
	if _, ok := g.transitions[s]; !ok {
		g.transitions[s] = nil
	}
}

// Connect adds an edge from one state to another guarded by when. Both ends
// are registered if they were not already.
func (g *Graph[U, C]) Connect(from, to State, when Predicate[U, C]) {
	if when == nil {
		panic("automata: nil predicate")
	}
	g.AddState(from)
	g.AddState(to)
	g.transitions[from] = append(g.transitions[from], edge[U, C]{to: to, when: when})
}

// Mark sets whether s is terminal, registering s if necessary.
func (g *Graph[U, C]) Mark(s State, terminal bool) {
	g.AddState(s)
	if terminal {
		g.terminals[s] = struct{}{}
		return
	}
	delete(g.terminals, s)
}

// Terminal reports whether s is a terminal state.
func (g *Graph[U, C]) Terminal(s State) bool {
	_, ok := g.terminals[s]
	return ok
}

// Has reports whether s is registered in the table.
func (g *Graph[U, C]) Has(s State) bool {
	_, ok := g.transitions[s]
	return ok
}

// Degree returns the number of edges leaving s.
func (g *Graph[U, C]) Degree(s State) int {
	return len(g.transitions[s])
}

// States returns every registered state in a stable order.
func (g *Graph[U, C]) States() []State {
	states := make([]State, 0, len(g.transitions))
	for s := range g.transitions {
		states = append(states, s)
	}
	sortStates(states)
	return states
}

// Len returns the number of registered states.
func (g *Graph[U, C]) Len() int { return len(g.transitions) }

// Automaton starts an automaton at the root of a snapshot of g with base as
// the initial context.
func (g *Graph[U, C]) Automaton(base C, opts ...Option[C]) *Automaton[U, C] {
	return newAutomaton(g.clone(), base, opts)
}

// Remap returns a structurally identical table in which every state,
// including isolated ones, has been replaced by a fresh identity.
func (g *Graph[U, C]) Remap() *Graph[U, C] {
	remapped, _ := g.remap()
	return remapped
}

// Include copies sub into g under fresh identities and returns the state that
// was sub's root. Including the same sub-graph twice yields two disjoint
// copies that can be wired independently.
//
// Example:
//
//	digit := digitGraph() // accepts one or more digits
//	g := automata.NewGraph[rune, automata.Unit]()
//	first := g.Include(digit)
//	g.Connect(g.Root(), first, ...)
func (g *Graph[U, C]) Include(sub *Graph[U, C]) State {
	copied, mapping := sub.remap()
	for s, edges := range copied.transitions {
		g.transitions[s] = edges
	}
	for s := range copied.terminals {
		g.terminals[s] = struct{}{}
	}
	return mapping[sub.root]
}

// clone copies the table. Edge slices are copied so that appends on either
// side never alias.
func (g *Graph[U, C]) clone() *Graph[U, C] {
	c := &Graph[U, C]{
		root:        g.root,
		transitions: make(map[State][]edge[U, C], len(g.transitions)),
		terminals:   make(map[State]struct{}, len(g.terminals)),
	}
	for s, edges := range g.transitions {
		c.transitions[s] = append([]edge[U, C](nil), edges...)
	}
	for s := range g.terminals {
		c.terminals[s] = struct{}{}
	}
	return c
}

// remap builds the old-to-fresh identity map over every registered state and
// rewrites the table through it.
func (g *Graph[U, C]) remap() (*Graph[U, C], map[State]State) {
	mapping := make(map[State]State, len(g.transitions))
	for s := range g.transitions {
		mapping[s] = NewState()
	}

	out := &Graph[U, C]{
		root:        mapping[g.root],
		transitions: make(map[State][]edge[U, C], len(g.transitions)),
		terminals:   make(map[State]struct{}, len(g.terminals)),
	}
	for s, edges := range g.transitions {
		rewritten := make([]edge[U, C], len(edges))
		for i, e := range edges {
			rewritten[i] = edge[U, C]{to: mapping[e.to], when: e.when}
		}
		out.transitions[mapping[s]] = rewritten
	}
	for s := range g.terminals {
		out.terminals[mapping[s]] = struct{}{}
	}
	return out, mapping
}

// compile walks the graph reachable from root and captures it as a table.
func compile[U, C any](root Node[U, C]) *Graph[U, C] {
	if root == nil {
		panic("automata: nil root node")
	}

	g := &Graph[U, C]{
		root:        root.State(),
		transitions: make(map[State][]edge[U, C]),
		terminals:   make(map[State]struct{}),
	}

	seen := map[State]bool{root.State(): true}
	queue := []Node[U, C]{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		from := n.State()
		g.AddState(from)
		if n.Terminal() {
			g.terminals[from] = struct{}{}
		}

		for _, t := range n.Transitions() {
			if t.To == nil {
				panic("automata: transition with nil destination")
			}
			if t.When == nil {
				panic("automata: transition with nil predicate")
			}
			to := t.To.State()
			g.transitions[from] = append(g.transitions[from], edge[U, C]{to: to, when: t.When})
			if !seen[to] {
				seen[to] = true
				queue = append(queue, t.To)
			}
		}
	}
	return g
}
