package automata

import "slices"

// Unit is the context type of automata that need no context.
type Unit = struct{}

// Node is a state of an automaton graph together with its outgoing edges.
//
// A node's terminal flag is independent of its out-degree: a terminal node
// may keep going, and a non-terminal node with no transitions is a dead end.
//
// The set of implementations is closed: NFA and PDA are the only variants.
//
// Type parameter U is the input unit type, C the context threaded through
// predicates.
type Node[U, C any] interface {
	// State returns the identity of this node.
	State() State

	// Terminal reports whether landing here accepts the input read so far.
	Terminal() bool

	// Transitions returns the outgoing edges in insertion order.
	Transitions() []Transition[U, C]

	node()
}

// Builder is a node that accepts additional transitions.
//
// Add appends to the end of the transition list. Order only affects the order
// in which successor configurations are enumerated; every accepting
// transition fires.
type Builder[U, C any] interface {
	Node[U, C]
	Add(t Transition[U, C])
}

// NFA is a node of a non-deterministic finite automaton. Its transitions
// ignore context and only test the input unit.
//
// Example:
//
//	a := automata.NewNFA[rune](false)
//	b := automata.NewNFA[rune](true)
//	a.On(b, func(r rune) bool { return r == 'a' })
//	b.On(b, func(r rune) bool { return r == 'a' })
type NFA[U any] struct {
	state       State
	terminal    bool
	transitions []Transition[U, Unit]
}

// NewNFA creates a finite-automaton node.
func NewNFA[U any](terminal bool, transitions ...Transition[U, Unit]) *NFA[U] {
	return &NFA[U]{
		state:       NewState(),
		terminal:    terminal,
		transitions: slices.Clone(transitions),
	}
}

// State implements Node.
func (n *NFA[U]) State() State { return n.state }

// Terminal implements Node.
func (n *NFA[U]) Terminal() bool { return n.terminal }

// Transitions implements Node.
func (n *NFA[U]) Transitions() []Transition[U, Unit] {
	return slices.Clone(n.transitions)
}

// Add implements Builder.
func (n *NFA[U]) Add(t Transition[U, Unit]) {
	n.transitions = append(n.transitions, t)
}

// On adds a transition to dest taken whenever match accepts the unit.
func (n *NFA[U]) On(dest Node[U, Unit], match func(unit U) bool) {
	n.Add(Transition[U, Unit]{To: dest, When: When(match)})
}

func (n *NFA[U]) node() {}

// PDA is a node of a push-down automaton. Its context is a Stack of markers
// that predicates read, push and pop as part of acceptance.
//
// Example (balanced parentheses; the terminal root is re-entered only when
// a closing parenthesis empties the stack):
//
//	root := automata.NewPDA[rune, string](true)
//	open := automata.NewPDA[rune, string](false)
//	push := func(r rune, s automata.Stack[string]) (bool, automata.Stack[string]) {
//	    return r == '(', s.Push("(")
//	}
//	pop := func(last bool) automata.Predicate[rune, automata.Stack[string]] {
//	    return func(r rune, s automata.Stack[string]) (bool, automata.Stack[string]) {
//	        _, rest, ok := s.Pop()
//	        return r == ')' && ok && rest.IsEmpty() == last, rest
//	    }
//	}
//	root.On(open, push)
//	open.On(open, push)
//	open.On(open, pop(false))
//	open.On(root, pop(true))
type PDA[U, M any] struct {
	state       State
	terminal    bool
	transitions []Transition[U, Stack[M]]
}

// NewPDA creates a push-down automaton node.
func NewPDA[U, M any](terminal bool, transitions ...Transition[U, Stack[M]]) *PDA[U, M] {
	return &PDA[U, M]{
		state:       NewState(),
		terminal:    terminal,
		transitions: slices.Clone(transitions),
	}
}

// State implements Node.
func (n *PDA[U, M]) State() State { return n.state }

// Terminal implements Node.
func (n *PDA[U, M]) Terminal() bool { return n.terminal }

// Transitions implements Node.
func (n *PDA[U, M]) Transitions() []Transition[U, Stack[M]] {
	return slices.Clone(n.transitions)
}

// Add implements Builder.
func (n *PDA[U, M]) Add(t Transition[U, Stack[M]]) {
	n.transitions = append(n.transitions, t)
}

// On adds a transition to dest guarded by the stack-aware predicate when.
func (n *PDA[U, M]) On(dest Node[U, Stack[M]], when Predicate[U, Stack[M]]) {
	n.Add(Transition[U, Stack[M]]{To: dest, When: when})
}

func (n *PDA[U, M]) node() {}
