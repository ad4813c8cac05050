package lex

import (
	"slices"
	"testing"
)

// TestPushback_Order verifies pushed units are read first, in order, ahead
// of older buffered units.
func TestPushback_Order(t *testing.T) {
	p := NewPushback(FromString("xyz"))

	first, _ := p.Next()
	if first != 'x' {
		t.Fatalf("expected 'x', got %q", first)
	}

	p.Push('b', 'c')
	p.Push('a')

	if got := string(drain[rune](p)); got != "abcyz" {
		t.Errorf("expected %q, got %q", "abcyz", got)
	}
}

// TestPushback_NoNesting verifies wrapping a Pushback returns it unchanged.
func TestPushback_NoNesting(t *testing.T) {
	p := NewPushback(FromString("ab"))
	p.Push('z')

	again := NewPushback[rune](p)
	if again != p {
		t.Fatal("NewPushback should return an existing *Pushback")
	}
	if again.Len() != 1 {
		t.Errorf("expected 1 buffered unit, got %d", again.Len())
	}
}

// TestPushback_Peek verifies Peek does not consume.
func TestPushback_Peek(t *testing.T) {
	p := NewPushback(FromString("q"))

	for i := 0; i < 2; i++ {
		if r, ok := p.Peek(); !ok || r != 'q' {
			t.Fatalf("peek %d: expected 'q', got %q (%v)", i, r, ok)
		}
	}
	if r, _ := p.Next(); r != 'q' {
		t.Errorf("expected 'q', got %q", r)
	}
	if _, ok := p.Peek(); ok {
		t.Error("peek on exhausted source should report false")
	}
}

// TestPushback_Buffered verifies the buffer snapshot is a copy.
func TestPushback_Buffered(t *testing.T) {
	p := NewPushback(FromSlice([]int{}))
	p.Push(1, 2, 3)

	buf := p.Buffered()
	buf[0] = 99
	if !slices.Equal(p.Buffered(), []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", p.Buffered())
	}

	p.Push()
	if p.Len() != 3 {
		t.Errorf("empty Push should be a no-op, len %d", p.Len())
	}
}

// TestPushback_NilSource verifies a pushback with no source serves only its
// buffer.
func TestPushback_NilSource(t *testing.T) {
	p := NewPushback[int](nil)
	if _, ok := p.Next(); ok {
		t.Error("expected exhausted")
	}
	p.Push(7)
	if u, ok := p.Next(); !ok || u != 7 {
		t.Errorf("expected 7, got %d (%v)", u, ok)
	}
}
