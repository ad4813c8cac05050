package lex

import (
	"github.com/dshills/automata-go/automata"
	"github.com/dshills/automata-go/automata/emit"
)

// StopReason says why a scan stopped reading.
type StopReason string

const (
	// StopExhausted means the source ran out of units.
	StopExhausted StopReason = "exhausted"
	// StopDeadEnd means a unit had no viable continuation.
	StopDeadEnd StopReason = "dead_end"
)

// ScanResult describes one longest-match scan.
type ScanResult struct {
	Matched  bool
	Length   int // units in the returned prefix
	Pulled   int // units read from the source, including the dead-end unit
	Restored int // units pushed back
	Dropped  int // units discarded by PushbackNarrow
	Stop     StopReason

	// PeakConfigurations is the widest configuration set seen, for machines
	// that report a Width. Zero otherwise.
	PeakConfigurations int
}

// widther is implemented by *automata.Automaton.
type widther interface {
	Width() int
}

// Scanner extracts longest accepted prefixes from a pushback source.
//
// A Scanner owns its source: interleaving reads from other code is fine
// between calls, but a Scanner is not safe for concurrent use.
type Scanner[U any] struct {
	src *Pushback[U]
	cfg *config
}

// NewScanner wraps src (via NewPushback) and applies opts.
func NewScanner[U any](src Source[U], opts ...Option) (*Scanner[U], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Scanner[U]{src: NewPushback(src), cfg: cfg}, nil
}

// Source returns the pushback source the scanner reads from.
func (s *Scanner[U]) Source() *Pushback[U] { return s.src }

// Next returns the longest prefix of the remaining input accepted by m.
//
// ok is false when no prefix, not even the empty one, is accepted; every
// unit read is then pushed back. A machine whose start state is terminal
// always matches at least the empty prefix, reported as a non-nil empty
// slice.
func (s *Scanner[U]) Next(m automata.Machine[U]) ([]U, bool) {
	match, res := s.Scan(m)
	return match, res.Matched
}

// Scan is Next with the details of the scan.
func (s *Scanner[U]) Scan(m automata.Machine[U]) ([]U, ScanResult) {
	return s.scan(m, s.cfg.opts.Policy, s.cfg.opts.RunID, "", 0)
}

func (s *Scanner[U]) scan(m automata.Machine[U], policy PushbackPolicy, runID, rule string, seq int) ([]U, ScanResult) {
	match, res := longestMatch(s.src, m, policy)

	msg := "no_match"
	if res.Matched {
		msg = "match"
	}
	s.cfg.emitter.Emit(emit.Event{
		RunID: runID,
		Seq:   seq,
		Rule:  rule,
		Msg:   msg,
		Meta: map[string]interface{}{
			"length":              res.Length,
			"pulled":              res.Pulled,
			"restored":            res.Restored,
			"dropped":             res.Dropped,
			"stop":                string(res.Stop),
			"peak_configurations": res.PeakConfigurations,
		},
	})
	s.cfg.metrics.RecordScan(rule, res)

	return match, res
}

// LongestMatch runs one scan of m over src with PushbackFull and no
// observability.
func LongestMatch[U any](src *Pushback[U], m automata.Machine[U]) ([]U, bool) {
	match, res := longestMatch(src, m, PushbackFull)
	return match, res.Matched
}

func longestMatch[U any](src *Pushback[U], m automata.Machine[U], policy PushbackPolicy) ([]U, ScanResult) {
	var (
		consumed []U
		best     = -1
		cur      = m
		res      = ScanResult{Stop: StopExhausted}
		trigger  U
		deadEnd  bool
	)

	if cur.IsPassing() {
		best = 0
	}
	if w, ok := cur.(widther); ok {
		res.PeakConfigurations = w.Width()
	}

	for {
		u, ok := src.Next()
		if !ok {
			break
		}
		res.Pulled++

		next, ok := cur.Step(u)
		if !ok {
			trigger, deadEnd = u, true
			res.Stop = StopDeadEnd
			break
		}
		consumed = append(consumed, u)
		cur = next
		if cur.IsPassing() {
			best = len(consumed)
		}
		if w, ok := cur.(widther); ok && w.Width() > res.PeakConfigurations {
			res.PeakConfigurations = w.Width()
		}
	}

	var restore []U
	switch {
	case best < 0:
		restore = consumed
	case deadEnd && policy == PushbackNarrow:
		res.Dropped = len(consumed) - best
	default:
		restore = consumed[best:]
	}
	if deadEnd {
		restore = append(restore[:len(restore):len(restore)], trigger)
	}
	src.Push(restore...)
	res.Restored = len(restore)

	if best < 0 {
		return nil, res
	}
	res.Matched = true
	res.Length = best
	match := make([]U, best)
	copy(match, consumed)
	return match, res
}
