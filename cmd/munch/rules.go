package main

import (
	"strings"
	"unicode"

	"github.com/dshills/automata-go/automata"
)

type namedRule struct {
	name    string
	summary string
	machine automata.Machine[rune]
}

const punctuation = "+-*/%=<>!&|^~?:;,.()[]{}"

// builtinRules returns the rule set in priority order.
func builtinRules() []namedRule {
	return []namedRule{
		{"comment", "// to end of line", lineComment()},
		{"string", `double quoted, backslash escapes`, quoted()},
		{"ident", "letter or _, then letters, digits, _", identifier()},
		{"number", "digits with optional fraction", number()},
		{"group", "balanced parentheses", parens()},
		{"punct", "one of " + punctuation, oneOf(punctuation)},
		{"space", "whitespace", whitespace()},
	}
}

func is(want rune) func(rune) bool {
	return func(r rune) bool { return r == want }
}

func identifier() *automata.Automaton[rune, automata.Unit] {
	start := func(r rune) bool { return r == '_' || unicode.IsLetter(r) }
	rest := func(r rune) bool { return start(r) || unicode.IsDigit(r) }

	root := automata.NewNFA[rune](false)
	body := automata.NewNFA[rune](true)
	root.On(body, start)
	body.On(body, rest)
	return automata.FromNFA(root)
}

// number accepts 12 and 12.5 but not 12. or .5.
func number() *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	whole := automata.NewNFA[rune](true)
	dot := automata.NewNFA[rune](false)
	frac := automata.NewNFA[rune](true)

	root.On(whole, unicode.IsDigit)
	whole.On(whole, unicode.IsDigit)
	whole.On(dot, is('.'))
	dot.On(frac, unicode.IsDigit)
	frac.On(frac, unicode.IsDigit)
	return automata.FromNFA(root)
}

func whitespace() *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	run := automata.NewNFA[rune](true)
	root.On(run, unicode.IsSpace)
	run.On(run, unicode.IsSpace)
	return automata.FromNFA(root)
}

func oneOf(set string) *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	root.On(automata.NewNFA[rune](true), func(r rune) bool { return strings.ContainsRune(set, r) })
	return automata.FromNFA(root)
}

func lineComment() *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	slash := automata.NewNFA[rune](false)
	body := automata.NewNFA[rune](true)
	root.On(slash, is('/'))
	slash.On(body, is('/'))
	body.On(body, func(r rune) bool { return r != '\n' })
	return automata.FromNFA(root)
}

func quoted() *automata.Automaton[rune, automata.Unit] {
	root := automata.NewNFA[rune](false)
	body := automata.NewNFA[rune](false)
	escape := automata.NewNFA[rune](false)
	end := automata.NewNFA[rune](true)

	root.On(body, is('"'))
	body.On(end, is('"'))
	body.On(escape, is('\\'))
	body.On(body, func(r rune) bool { return r != '"' && r != '\\' && r != '\n' })
	escape.On(body, func(r rune) bool { return r != '\n' })
	return automata.FromNFA(root)
}

// parens accepts one or more balanced parenthesised groups, using the stack
// depth to know when the outermost group closes.
func parens() *automata.Automaton[rune, automata.Stack[rune]] {
	root := automata.NewPDA[rune, rune](false)
	open := automata.NewPDA[rune, rune](false)
	closed := automata.NewPDA[rune, rune](true)

	push := func(r rune, s automata.Stack[rune]) (bool, automata.Stack[rune]) {
		return r == '(', s.Push(r)
	}
	pop := func(last bool) automata.Predicate[rune, automata.Stack[rune]] {
		return func(r rune, s automata.Stack[rune]) (bool, automata.Stack[rune]) {
			_, rest, ok := s.Pop()
			return r == ')' && ok && rest.IsEmpty() == last, rest
		}
	}
	inner := func(r rune, s automata.Stack[rune]) (bool, automata.Stack[rune]) {
		return r != '(' && r != ')', s
	}

	root.On(open, push)
	open.On(open, push)
	open.On(open, pop(false))
	open.On(open, inner)
	open.On(closed, pop(true))
	closed.On(open, push)
	return automata.FromPDA(root, automata.Stack[rune]{})
}
