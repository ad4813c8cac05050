package automata

// Stack is an immutable stack of markers used as push-down context.
//
// Push and Pop return new stacks and never modify the receiver, so a stack
// held by one configuration is unaffected by transitions taken from another.
// Stacks share their common tail; pushing is O(1).
//
// The zero Stack is empty and ready to use.
type Stack[M any] struct {
	top  *frame[M]
	size int
}

type frame[M any] struct {
	marker M
	below  *frame[M]
}

// StackOf builds a stack from markers listed bottom first.
func StackOf[M any](markers ...M) Stack[M] {
	var s Stack[M]
	for _, m := range markers {
		s = s.Push(m)
	}
	return s
}

// Push returns a stack with m on top of s.
func (s Stack[M]) Push(m M) Stack[M] {
	return Stack[M]{top: &frame[M]{marker: m, below: s.top}, size: s.size + 1}
}

// Pop returns the top marker and the stack below it.
// ok is false when s is empty, in which case rest is s.
func (s Stack[M]) Pop() (top M, rest Stack[M], ok bool) {
	if s.top == nil {
		var zero M
		return zero, s, false
	}
	return s.top.marker, Stack[M]{top: s.top.below, size: s.size - 1}, true
}

// Peek returns the top marker without removing it.
func (s Stack[M]) Peek() (M, bool) {
	if s.top == nil {
		var zero M
		return zero, false
	}
	return s.top.marker, true
}

// Len returns the number of markers on the stack.
func (s Stack[M]) Len() int { return s.size }

// IsEmpty reports whether the stack holds no markers.
func (s Stack[M]) IsEmpty() bool { return s.size == 0 }

// Slice returns the markers bottom first.
func (s Stack[M]) Slice() []M {
	out := make([]M, s.size)
	i := s.size - 1
	for f := s.top; f != nil; f = f.below {
		out[i] = f.marker
		i--
	}
	return out
}

// StackEqual reports whether a and b hold the same markers in the same order.
func StackEqual[M comparable](a, b Stack[M]) bool {
	if a.size != b.size {
		return false
	}
	for fa, fb := a.top, b.top; fa != fb; fa, fb = fa.below, fb.below {
		if fa.marker != fb.marker {
			return false
		}
	}
	return true
}
