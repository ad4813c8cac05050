package lex

import (
	"unicode"

	"github.com/dshills/automata-go/automata"
)

func is(want rune) func(rune) bool {
	return func(r rune) bool { return r == want }
}

// aRepeating accepts a+.
func aRepeating() *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	end := automata.NewNFA[rune](true)
	root.On(end, is('a'))
	end.On(end, is('a'))
	return automata.FromNFA(root)
}

// aThenBs accepts "a" and continues through b* without accepting again.
func aThenBs() *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	end := automata.NewNFA[rune](true)
	mid := automata.NewNFA[rune](false)
	root.On(end, is('a'))
	end.On(mid, is('b'))
	mid.On(mid, is('b'))
	return automata.FromNFA(root)
}

// class accepts one unit matching first followed by any number matching
// rest. A nil rest accepts exactly one unit.
func class(first, rest func(rune) bool) *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	end := automata.NewNFA[rune](true)
	root.On(end, first)
	if rest != nil {
		end.On(end, rest)
	}
	return automata.FromNFA(root)
}

// literal accepts exactly s.
func literal(s string) *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](len(s) == 0)
	cur := root
	runes := []rune(s)
	for i, r := range runes {
		next := automata.NewNFA[rune](i == len(runes)-1)
		cur.On(next, is(r))
		cur = next
	}
	return automata.FromNFA(root)
}

func ident() *automata.Automaton[rune, automata.Unit] {
	return class(unicode.IsLetter, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
}

func number() *automata.Automaton[rune, automata.Unit] {
	return class(unicode.IsDigit, unicode.IsDigit)
}

func space() *automata.Automaton[rune, automata.Unit] {
	return class(unicode.IsSpace, unicode.IsSpace)
}

// balancedParens accepts non-empty well-nested parentheses.
func balancedParens() *automata.Automaton[rune, automata.Stack[rune]] {
	root := automata.NewPDA[rune, rune](false)
	open := automata.NewPDA[rune, rune](false)
	closed := automata.NewPDA[rune, rune](true)

	push := func(r rune, s automata.Stack[rune]) (bool, automata.Stack[rune]) { return r == '(', s.Push(r) }
	pop := func(r rune, s automata.Stack[rune]) (bool, automata.Stack[rune]) {
		_, rest, ok := s.Pop()
		return r == ')' && ok && !rest.IsEmpty(), rest
	}
	popLast := func(r rune, s automata.Stack[rune]) (bool, automata.Stack[rune]) {
		_, rest, ok := s.Pop()
		return r == ')' && ok && rest.IsEmpty(), rest
	}

	root.On(open, push)
	open.On(open, push)
	open.On(open, pop)
	open.On(closed, popLast)
	closed.On(open, push)
	return automata.FromPDA(root, automata.Stack[rune]{})
}

func drain[U any](src Source[U]) []U {
	var out []U
	for {
		u, ok := src.Next()
		if !ok {
			return out
		}
		out = append(out, u)
	}
}
