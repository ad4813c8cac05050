// Package automata provides a generic non-deterministic automaton engine.
//
// Graphs are built from states joined by predicate-guarded transitions. A
// predicate sees one input unit plus a context value and returns whether the
// transition fires along with the (possibly updated) context. The engine keeps
// every simultaneously active (state, context) pair and advances all of them in
// lock-step, which realises both plain NFAs (context is Unit) and push-down
// automata (context is a Stack of markers) through one mechanism.
//
// Two construction styles are supported:
//
//	// Node style
//	root := automata.NewNFA[rune](false)
//	done := automata.NewNFA[rune](true)
//	root.On(done, func(r rune) bool { return r == 'b' })
//	m := automata.FromNFA(root)
//	m.Contains([]rune("b")) // true
//
//	// State-table style
//	g := automata.NewGraph[rune, automata.Unit]()
//	end := automata.NewState()
//	g.Connect(g.Root(), end, automata.When(func(r rune) bool { return r == 'b' }))
//	g.Mark(end, true)
//	m := g.Automaton(automata.Unit{})
//
// Automaton values are immutable: Advance returns a new value and leaves the
// receiver usable, so callers may branch speculatively from any point.
package automata
