package lex

import (
	"fmt"

	"github.com/dshills/automata-go/automata/emit"
)

// PushbackPolicy decides which units a scan restores after it stops at a
// dead end having already recorded a match.
type PushbackPolicy int

const (
	// PushbackFull restores every unit read after the match, plus the unit
	// that caused the dead end. Nothing is ever lost.
	PushbackFull PushbackPolicy = iota

	// PushbackNarrow restores only the dead-end unit. Units read between the
	// end of the match and the dead end are discarded.
	PushbackNarrow
)

func (p PushbackPolicy) String() string {
	switch p {
	case PushbackFull:
		return "full"
	case PushbackNarrow:
		return "narrow"
	default:
		return fmt.Sprintf("PushbackPolicy(%d)", int(p))
	}
}

// ParsePushbackPolicy parses "full" or "narrow". The empty string means
// PushbackFull.
func ParsePushbackPolicy(s string) (PushbackPolicy, error) {
	switch s {
	case "", "full":
		return PushbackFull, nil
	case "narrow":
		return PushbackNarrow, nil
	default:
		return 0, fmt.Errorf("unknown pushback policy %q (want full or narrow)", s)
	}
}

// Options configures scanners and tokenizers. Zero values are valid.
type Options struct {
	// Policy selects the pushback policy. Default PushbackFull.
	Policy PushbackPolicy

	// MaxTokens caps the tokens a single Run may produce, skipped tokens
	// included. If 0, no limit is enforced.
	MaxTokens int

	// Skip names rules whose tokens are consumed and journaled but not
	// returned by Run.
	Skip []string

	// RunID labels events from a bare Scanner. Tokenizers use the run ID
	// passed to Run.
	RunID string
}

// Option is a functional option for configuring a Scanner or Tokenizer.
//
// Example:
//
//	tok, err := lex.NewTokenizer[rune](
//	    lex.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	    lex.WithStore[rune](store.NewMemStore[rune]()),
//	    lex.WithSkip("space"),
//	)
type Option func(*config) error

type config struct {
	opts    Options
	emitter emit.Emitter
	metrics *Metrics
	store   any // store.Store[U], checked against U by NewTokenizer
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.emitter == nil {
		cfg.emitter = emit.NewNullEmitter()
	}
	return cfg, nil
}

// WithOptions replaces the plain options. Later functional options still
// override individual fields.
func WithOptions(o Options) Option {
	return func(cfg *config) error {
		cfg.opts = o
		return nil
	}
}

// WithEmitter sends scan and token events to e.
func WithEmitter(e emit.Emitter) Option {
	return func(cfg *config) error {
		cfg.emitter = e
		return nil
	}
}

// WithMetrics records Prometheus metrics for every scan and token.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) error {
		cfg.metrics = m
		return nil
	}
}

// WithPushbackPolicy selects the pushback policy.
func WithPushbackPolicy(p PushbackPolicy) Option {
	return func(cfg *config) error {
		if p != PushbackFull && p != PushbackNarrow {
			return &TokenizerError{Message: "invalid pushback policy: " + p.String(), Code: "INVALID_OPTION", Offset: -1}
		}
		cfg.opts.Policy = p
		return nil
	}
}

// WithMaxTokens caps the tokens a single Run may produce.
func WithMaxTokens(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return &TokenizerError{Message: fmt.Sprintf("MaxTokens must be >= 0, got %d", n), Code: "INVALID_OPTION", Offset: -1}
		}
		cfg.opts.MaxTokens = n
		return nil
	}
}

// WithSkip marks rules whose tokens Run consumes without returning.
func WithSkip(rules ...string) Option {
	return func(cfg *config) error {
		cfg.opts.Skip = append(cfg.opts.Skip, rules...)
		return nil
	}
}

// WithRunID labels a bare Scanner's events.
func WithRunID(runID string) Option {
	return func(cfg *config) error {
		cfg.opts.RunID = runID
		return nil
	}
}
