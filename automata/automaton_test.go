package automata

import (
	"slices"
	"testing"
)

func is(want rune) func(rune) bool {
	return func(r rune) bool { return r == want }
}

// singleB accepts exactly "b".
func singleB() *Automaton[rune, Unit] {
	a := NewNFA[rune](false)
	b := NewNFA[rune](true)
	a.On(b, is('b'))
	return FromNFA(a)
}

// aPlusB accepts a+b.
func aPlusB() *Automaton[rune, Unit] {
	root := NewNFA[rune](false)
	mid := NewNFA[rune](false)
	end := NewNFA[rune](true)
	root.On(mid, is('a'))
	mid.On(end, is('b'))
	mid.On(mid, is('a'))
	return FromNFA(root)
}

// balanced accepts well-nested parentheses of any depth. The root is only
// re-entered when the closing parenthesis empties the stack.
func balanced() *Automaton[rune, Stack[string]] {
	root := NewPDA[rune, string](true)
	open := NewPDA[rune, string](false)

	push := func(r rune, s Stack[string]) (bool, Stack[string]) {
		return r == '(', s.Push("(")
	}
	pop := func(last bool) Predicate[rune, Stack[string]] {
		return func(r rune, s Stack[string]) (bool, Stack[string]) {
			_, rest, ok := s.Pop()
			return r == ')' && ok && rest.IsEmpty() == last, rest
		}
	}

	root.On(open, push)
	open.On(open, push)
	open.On(open, pop(false))
	open.On(root, pop(true))
	return FromPDA(root, Stack[string]{})
}

// TestAutomaton_Advance verifies single-step behaviour.
func TestAutomaton_Advance(t *testing.T) {
	m := singleB()

	next, ok := m.Advance('b')
	if !ok {
		t.Fatal("advance over 'b' should succeed")
	}
	if !next.IsPassing() {
		t.Error("the automaton should contain 'b'")
	}

	if next, ok := m.Advance('a'); ok || next != nil {
		t.Error("advance over 'a' should report no viable continuation")
	}

	// The receiver is untouched by Advance.
	if m.IsPassing() {
		t.Error("initial automaton should not be passing")
	}
	if again, ok := m.Advance('b'); !ok || !again.IsPassing() {
		t.Error("initial automaton should remain reusable after advancing")
	}
}

// TestAutomaton_Contains covers the NFA scenarios.
func TestAutomaton_Contains(t *testing.T) {
	tests := []struct {
		name  string
		m     *Automaton[rune, Unit]
		input string
		want  bool
	}{
		{"single b accepts b", singleB(), "b", true},
		{"single b rejects a", singleB(), "a", false},
		{"single b rejects empty", singleB(), "", false},
		{"a+b accepts ab", aPlusB(), "ab", true},
		{"a+b accepts aab", aPlusB(), "aab", true},
		{"a+b accepts aaab", aPlusB(), "aaab", true},
		{"a+b rejects a", aPlusB(), "a", false},
		{"a+b rejects b", aPlusB(), "b", false},
		{"a+b rejects abb", aPlusB(), "abb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Contains([]rune(tt.input)); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestAutomaton_ContainsEmpty verifies Contains(nil) equals the initial
// IsPassing.
func TestAutomaton_ContainsEmpty(t *testing.T) {
	terminalRoot := FromNFA(NewNFA[rune](true))
	if !terminalRoot.Contains(nil) {
		t.Error("terminal root should contain the empty sequence")
	}
	if singleB().Contains(nil) {
		t.Error("non-terminal root should not contain the empty sequence")
	}
	if !balanced().Contains([]rune{}) {
		t.Error("balanced parens should contain the empty sequence")
	}
}

// TestAutomaton_OnePathFails verifies that a dead branch does not hide a live
// one.
func TestAutomaton_OnePathFails(t *testing.T) {
	a := NewNFA[rune](false)
	b := NewNFA[rune](false)
	c := NewNFA[rune](false)
	d := NewNFA[rune](false)
	e := NewNFA[rune](true)
	a.On(b, is('a'))
	b.On(c, is('b'))
	b.On(d, is('b'))
	c.On(e, is('c'))
	m := FromNFA(a)

	if !m.Contains([]rune("abc")) {
		t.Error("the automaton should contain 'abc'")
	}
	if m.Contains([]rune("ab")) {
		t.Error("the automaton should not contain 'ab'")
	}
	if m.Contains([]rune("abd")) {
		t.Error("the automaton should not contain 'abd'")
	}
}

// TestAutomaton_UnionIsExact verifies that every accepting transition of
// every configuration contributes a successor.
func TestAutomaton_UnionIsExact(t *testing.T) {
	root := NewNFA[rune](false)
	x := NewNFA[rune](false)
	y := NewNFA[rune](true)
	z := NewNFA[rune](false)
	root.On(x, is('a'))
	root.On(y, is('a'))
	root.On(z, is('b'))
	x.On(z, is('a'))
	y.On(z, is('a'))
	y.On(y, is('a'))

	m := FromNFA(root)
	step1, ok := m.Advance('a')
	if !ok {
		t.Fatal("expected advance on 'a'")
	}
	if got := statesOf(step1); !slices.Equal(got, []State{x.State(), y.State()}) {
		t.Errorf("step 1 states = %v, want [x y]", got)
	}

	// x->z, y->z (collapsed for an NFA), y->y.
	step2, ok := step1.Advance('a')
	if !ok {
		t.Fatal("expected second advance on 'a'")
	}
	if got := statesOf(step2); !slices.Equal(got, []State{z.State(), y.State()}) {
		t.Errorf("step 2 states = %v, want [z y]", got)
	}
	if !step2.IsPassing() {
		t.Error("y is terminal; step 2 should be passing")
	}
}

// TestAutomaton_DistinctContextsSurvive verifies configurations are never
// deduplicated by state alone.
func TestAutomaton_DistinctContextsSurvive(t *testing.T) {
	root := NewPDA[rune, int](false)
	end := NewPDA[rune, int](true)
	root.On(end, func(r rune, s Stack[int]) (bool, Stack[int]) { return true, s.Push(1) })
	root.On(end, func(r rune, s Stack[int]) (bool, Stack[int]) { return true, s.Push(2) })
	root.On(end, func(r rune, s Stack[int]) (bool, Stack[int]) { return true, s.Push(1) })

	next, ok := FromPDA(root, Stack[int]{}).Advance('x')
	if !ok {
		t.Fatal("expected advance")
	}
	if next.Width() != 2 {
		t.Errorf("expected 2 configurations (equal stacks collapsed), got %d", next.Width())
	}

	contexts := next.PassingContexts()
	if len(contexts) != 2 {
		t.Fatalf("expected 2 passing contexts, got %d", len(contexts))
	}
	if top, _ := contexts[0].Peek(); top != 1 {
		t.Errorf("first passing context top = %d, want 1", top)
	}
	if top, _ := contexts[1].Peek(); top != 2 {
		t.Errorf("second passing context top = %d, want 2", top)
	}

	// Without an equality function nothing is collapsed.
	raw, _ := New[rune, Stack[int]](root, Stack[int]{}).Advance('x')
	if raw.Width() != 3 {
		t.Errorf("expected 3 configurations without equality, got %d", raw.Width())
	}
}

// TestAutomaton_PDA covers balanced-structure recognition.
func TestAutomaton_PDA(t *testing.T) {
	m := balanced()

	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"()", true},
		{"(())", true},
		{"(()", false},
		{"())", false},
		{")(", false},
		{"()()(())", true},
		{"(()(", false},
		{"((", false},
		{"((((((((((((((((((((()))))))))))))))))))))", true},
		{"((((((((((((((((((((())))))))))))))))))))", false},
	}
	for _, tt := range tests {
		if got := m.Contains([]rune(tt.input)); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// TestAutomaton_PassingContexts verifies a caller can read back the final
// stack of an accepting path.
func TestAutomaton_PassingContexts(t *testing.T) {
	root := NewPDA[rune, rune](false)
	open := NewPDA[rune, rune](true)
	root.On(open, func(r rune, s Stack[rune]) (bool, Stack[rune]) { return r == '<', s.Push(r) })
	open.On(open, func(r rune, s Stack[rune]) (bool, Stack[rune]) { return r == '<', s.Push(r) })

	m := FromPDA(root, StackOf('$'))
	if got := m.PassingContexts(); len(got) != 0 {
		t.Errorf("expected no passing contexts initially, got %d", len(got))
	}

	cur := m
	for _, r := range "<<<" {
		next, ok := cur.Advance(r)
		if !ok {
			t.Fatalf("unexpected dead end at %q", r)
		}
		cur = next
	}

	contexts := cur.PassingContexts()
	if len(contexts) != 1 {
		t.Fatalf("expected 1 passing context, got %d", len(contexts))
	}
	if got := string(contexts[0].Slice()); got != "$<<<" {
		t.Errorf("final stack = %q, want %q", got, "$<<<")
	}
}

// TestAutomaton_OrderIndependence verifies that permuting a state's
// transitions never changes acceptance.
func TestAutomaton_OrderIndependence(t *testing.T) {
	build := func(order []int) *Automaton[rune, Unit] {
		root := NewNFA[rune](false)
		a := NewNFA[rune](false)
		b := NewNFA[rune](true)
		c := NewNFA[rune](false)
		edges := []func(){
			func() { root.On(a, is('x')) },
			func() { root.On(b, is('x')) },
			func() { root.On(c, is('y')) },
		}
		for _, i := range order {
			edges[i]()
		}
		a.On(b, is('y'))
		c.On(b, is('x'))
		return FromNFA(root)
	}

	inputs := []string{"", "x", "y", "xy", "yx", "xx", "yy", "xyx"}
	orders := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	reference := build(orders[0])
	for _, order := range orders[1:] {
		m := build(order)
		for _, in := range inputs {
			if got, want := m.Contains([]rune(in)), reference.Contains([]rune(in)); got != want {
				t.Errorf("order %v: Contains(%q) = %v, want %v", order, in, got, want)
			}
		}
	}
}

// TestAutomaton_Snapshot verifies that nodes mutated after New do not change
// an existing automaton.
func TestAutomaton_Snapshot(t *testing.T) {
	root := NewNFA[rune](false)
	end := NewNFA[rune](true)
	root.On(end, is('a'))
	m := FromNFA(root)

	root.On(end, is('b'))

	if m.Contains([]rune("b")) {
		t.Error("transition added after construction should not be observed")
	}
	if !FromNFA(root).Contains([]rune("b")) {
		t.Error("a fresh automaton should observe the new transition")
	}
}

// TestAutomaton_Reset verifies restarting from the root.
func TestAutomaton_Reset(t *testing.T) {
	m := aPlusB()
	mid, _ := m.Advance('a')
	fresh := mid.Reset(Unit{})
	if fresh.Width() != 1 || fresh.Configurations()[0].State != m.Root() {
		t.Error("Reset should return a single configuration at the root")
	}
}

// TestAutomaton_Step verifies the Machine view.
func TestAutomaton_Step(t *testing.T) {
	var mach Machine[rune] = singleB()

	next, ok := mach.Step('b')
	if !ok || !next.IsPassing() {
		t.Error("expected Step('b') to pass")
	}
	if next, ok := mach.Step('a'); ok || next != nil {
		t.Error("expected Step('a') to return (nil, false)")
	}
}

// TestNew_Preconditions verifies structural misuse panics.
func TestNew_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil root", func() { New[rune, Unit](nil, Unit{}) }},
		{"nil nfa root", func() { FromNFA[rune](nil) }},
		{"nil destination", func() {
			root := NewNFA[rune](false)
			root.Add(Transition[rune, Unit]{When: When(is('a'))})
			FromNFA(root)
		}},
		{"nil predicate", func() {
			root := NewNFA[rune](false)
			root.Add(Transition[rune, Unit]{To: NewNFA[rune](true)})
			FromNFA(root)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func statesOf[U, C any](a *Automaton[U, C]) []State {
	var out []State
	for _, cfg := range a.Configurations() {
		out = append(out, cfg.State)
	}
	return out
}
