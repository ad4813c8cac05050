package automata

// Predicate decides whether a transition fires for one unit of input.
//
// It receives the unit and the context of the configuration being advanced
// and returns whether the transition accepts, plus the context the
// destination configuration should carry. Counting, stack push/pop and
// character matching are all expressed here; the engine never interprets the
// context itself.
//
// Predicates must be pure. Route all matching state through the returned
// context instead of captured variables, otherwise earlier automaton values
// stop being reusable.
//
// Type parameter U is the input unit type, C the context type.
type Predicate[U, C any] func(unit U, ctx C) (bool, C)

// Transition is a directed edge to To, guarded by When.
//
// The source is implicit: a transition belongs to the node whose
// Transitions() list contains it.
type Transition[U, C any] struct {
	// To is the destination node.
	To Node[U, C]

	// When guards the edge. It must not be nil.
	When Predicate[U, C]
}

// To builds a transition to dest guarded by when.
func To[U, C any](dest Node[U, C], when Predicate[U, C]) Transition[U, C] {
	return Transition[U, C]{To: dest, When: when}
}

// When lifts a context-free test into a Predicate over the Unit context.
//
// Example:
//
//	isDigit := automata.When(func(r rune) bool { return r >= '0' && r <= '9' })
func When[U any](match func(unit U) bool) Predicate[U, Unit] {
	return func(unit U, _ Unit) (bool, Unit) {
		return match(unit), Unit{}
	}
}

// Traverse evaluates the transition for unit and ctx.
//
// Returns the destination and the resulting context when the predicate
// accepts, or ok == false otherwise.
func (t Transition[U, C]) Traverse(unit U, ctx C) (dest Node[U, C], next C, ok bool) {
	accepted, next := t.When(unit, ctx)
	if !accepted {
		var zero C
		return nil, zero, false
	}
	return t.To, next, true
}
