package lex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/automata-go/automata"
	"github.com/dshills/automata-go/automata/emit"
	"github.com/dshills/automata-go/automata/store"
)

// Token is one unit of tokenizer output.
type Token[U any] struct {
	// Rule names the rule that matched.
	Rule string
	// Units is the matched prefix.
	Units []U
	// Offset is the position of the first unit in the input.
	Offset int
}

// WithStore journals every token a tokenizer produces to st. It is also
// required by SaveCheckpoint and ResumeFromCheckpoint.
func WithStore[U any](st store.Store[U]) Option {
	return func(cfg *config) error {
		cfg.store = st
		return nil
	}
}

type rule[U any] struct {
	name    string
	machine automata.Machine[U]
}

// Tokenizer splits input into tokens by maximal munch over a set of named
// rules.
//
// At every position each rule is scanned; the longest match wins and ties go
// to the rule registered first. Candidate scans always restore everything
// they read, so rules never see each other's leftovers. The winning rule is
// then scanned again to commit its token under the configured pushback
// policy.
//
// Example:
//
//	tok, _ := lex.NewTokenizer[rune](lex.WithSkip("space"))
//	_ = tok.Add("ident", identifiers)
//	_ = tok.Add("number", numbers)
//	_ = tok.Add("space", whitespace)
//
//	tokens, err := tok.Run(ctx, "run-001", lex.FromString("x1 42"))
type Tokenizer[U any] struct {
	mu    sync.RWMutex
	rules []rule[U]
	names map[string]struct{}
	skip  map[string]struct{}

	store   store.Store[U]
	emitter emit.Emitter
	cfg     *config
}

// NewTokenizer creates an empty tokenizer. It fails if an option is invalid
// or WithStore was given a store for a different unit type.
func NewTokenizer[U any](opts ...Option) (*Tokenizer[U], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	t := &Tokenizer[U]{
		names:   make(map[string]struct{}),
		skip:    make(map[string]struct{}),
		emitter: cfg.emitter,
		cfg:     cfg,
	}
	if cfg.store != nil {
		st, ok := cfg.store.(store.Store[U])
		if !ok {
			return nil, &TokenizerError{
				Message: fmt.Sprintf("store %T does not hold this tokenizer's unit type", cfg.store),
				Code:    "STORE_TYPE_MISMATCH",
				Offset:  -1,
			}
		}
		t.store = st
	}
	for _, name := range cfg.opts.Skip {
		t.skip[name] = struct{}{}
	}
	return t, nil
}

// Add registers a rule. Rules are tried in registration order, which breaks
// ties between equally long matches.
//
// Returns error if name is empty, machine is nil, or name is already
// registered.
func (t *Tokenizer[U]) Add(name string, machine automata.Machine[U]) error {
	if name == "" {
		return &TokenizerError{Message: "rule name cannot be empty", Code: "EMPTY_RULE", Offset: -1}
	}
	if machine == nil {
		return &TokenizerError{Message: "machine cannot be nil for rule " + name, Code: "NIL_MACHINE", Offset: -1}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.names[name]; exists {
		return &TokenizerError{Message: "duplicate rule: " + name, Code: "DUPLICATE_RULE", Offset: -1}
	}
	t.names[name] = struct{}{}
	t.rules = append(t.rules, rule[U]{name: name, machine: machine})
	return nil
}

// Rules returns the registered rule names in order.
func (t *Tokenizer[U]) Rules() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, len(t.rules))
	for i, r := range t.rules {
		names[i] = r.name
	}
	return names
}

// Run tokenizes src until it is exhausted.
//
// The returned slice holds every non-skipped token produced, also when an
// error stops the run early. Errors:
//   - *TokenizerError "NO_RULES" if no rule is registered
//   - *TokenizerError "RUN_EXISTS" if the store already journals runID
//   - *TokenizerError "NO_MATCH" (wraps ErrNoMatch) if no rule matches; the
//     source is left at the failing offset
//   - *TokenizerError "NO_PROGRESS" (wraps ErrNoProgress) if the longest
//     match is empty
//   - *TokenizerError "MAX_TOKENS_EXCEEDED" (wraps ErrMaxTokensExceeded)
//   - *TokenizerError "STORE_ERROR" if journaling fails
//   - ctx.Err() on cancellation, checked between tokens
func (t *Tokenizer[U]) Run(ctx context.Context, runID string, src Source[U]) ([]Token[U], error) {
	return t.run(ctx, runID, NewPushback(src), 0, 0)
}

func (t *Tokenizer[U]) run(ctx context.Context, runID string, src *Pushback[U], seq, offset int) ([]Token[U], error) {
	t.mu.RLock()
	rules := t.rules
	t.mu.RUnlock()

	if len(rules) == 0 {
		return nil, t.fail(runID, seq, &TokenizerError{Message: "no rules registered", Code: "NO_RULES", Offset: offset})
	}

	if t.store != nil {
		_, err := t.store.LoadLatest(ctx, runID)
		switch {
		case err == nil:
			return nil, t.fail(runID, seq, &TokenizerError{
				Message: "run " + runID + " already has journaled tokens",
				Code:    "RUN_EXISTS",
				Offset:  offset,
			})
		case !errors.Is(err, store.ErrNotFound):
			return nil, t.fail(runID, seq, &TokenizerError{
				Message: "failed to check journal: " + err.Error(),
				Code:    "STORE_ERROR",
				Offset:  offset,
				Err:     err,
			})
		}
	}

	scanner := &Scanner[U]{src: src, cfg: t.cfg}
	var (
		tokens   []Token[U]
		produced int
	)

	for {
		select {
		case <-ctx.Done():
			t.cfg.metrics.RecordRun("canceled")
			return tokens, ctx.Err()
		default:
		}

		if _, ok := src.Peek(); !ok {
			break
		}

		if limit := t.cfg.opts.MaxTokens; limit > 0 && produced >= limit {
			return tokens, t.fail(runID, seq, &TokenizerError{
				Message: fmt.Sprintf("run exceeded MaxTokens limit of %d", limit),
				Code:    "MAX_TOKENS_EXCEEDED",
				Offset:  offset,
				Err:     ErrMaxTokensExceeded,
			})
		}

		winner, length := -1, -1
		for i, r := range rules {
			match, res := scanner.scan(r.machine, PushbackFull, runID, r.name, seq)
			if !res.Matched {
				continue
			}
			src.Push(match...)
			if len(match) > length {
				winner, length = i, len(match)
			}
		}

		if winner < 0 {
			return tokens, t.fail(runID, seq, &TokenizerError{
				Message: fmt.Sprintf("no rule matches at offset %d", offset),
				Code:    "NO_MATCH",
				Offset:  offset,
				Err:     ErrNoMatch,
			})
		}
		if length == 0 {
			return tokens, t.fail(runID, seq, &TokenizerError{
				Message: fmt.Sprintf("rule %s matched the empty prefix at offset %d", rules[winner].name, offset),
				Code:    "NO_PROGRESS",
				Offset:  offset,
				Err:     ErrNoProgress,
			})
		}

		r := rules[winner]
		units, res := scanner.scan(r.machine, t.cfg.opts.Policy, runID, r.name, seq)
		tok := Token[U]{Rule: r.name, Units: units, Offset: offset}
		end := offset + len(units) + res.Dropped

		if t.store != nil {
			rec := store.TokenRecord[U]{Seq: seq, Rule: r.name, Offset: offset, End: end, Units: units}
			if err := t.store.SaveToken(ctx, runID, rec); err != nil {
				return tokens, t.fail(runID, seq, &TokenizerError{
					Message: "failed to save token: " + err.Error(),
					Code:    "STORE_ERROR",
					Offset:  offset,
					Err:     err,
				})
			}
		}

		_, skipped := t.skip[r.name]
		t.emitter.Emit(emit.Event{
			RunID: runID,
			Seq:   seq,
			Rule:  r.name,
			Msg:   "token",
			Meta: map[string]interface{}{
				"offset":  offset,
				"length":  len(units),
				"dropped": res.Dropped,
				"skipped": skipped,
			},
		})
		t.cfg.metrics.IncrementTokens(r.name)

		if !skipped {
			tokens = append(tokens, tok)
		}
		seq++
		produced++
		offset = end
	}

	t.emitter.Emit(emit.Event{
		RunID: runID,
		Seq:   seq,
		Msg:   "run_complete",
		Meta: map[string]interface{}{
			"tokens": produced,
			"offset": offset,
		},
	})
	t.cfg.metrics.RecordRun("success")
	return tokens, nil
}

func (t *Tokenizer[U]) fail(runID string, seq int, err *TokenizerError) error {
	t.emitter.Emit(emit.Event{
		RunID: runID,
		Seq:   seq,
		Msg:   "run_error",
		Meta: map[string]interface{}{
			"error":  err.Error(),
			"code":   err.Code,
			"offset": err.Offset,
		},
	})
	t.cfg.metrics.RecordRun(err.Code)
	return err
}

// SaveCheckpoint records the position after the last journaled token of
// runID under cpID. Requires WithStore.
//
// Example:
//
//	_, _ = tok.Run(ctx, "run-001", lex.FromString(part1))
//	_ = tok.SaveCheckpoint(ctx, "run-001", "after-part1")
func (t *Tokenizer[U]) SaveCheckpoint(ctx context.Context, runID, cpID string) error {
	if t.store == nil {
		return &TokenizerError{Message: "store is required for checkpoints", Code: "MISSING_STORE", Offset: -1}
	}

	latest, err := t.store.LoadLatest(ctx, runID)
	if err != nil {
		code := "CHECKPOINT_SAVE_FAILED"
		if errors.Is(err, store.ErrNotFound) {
			code = "RUN_NOT_FOUND"
		}
		return &TokenizerError{Message: "cannot create checkpoint: " + err.Error(), Code: code, Offset: -1, Err: err}
	}

	cp := store.Checkpoint{ID: cpID, RunID: runID, Seq: latest.Seq + 1, Offset: latest.End}
	if err := t.store.SaveCheckpoint(ctx, cp); err != nil {
		return &TokenizerError{Message: "failed to save checkpoint: " + err.Error(), Code: "CHECKPOINT_SAVE_FAILED", Offset: -1, Err: err}
	}

	t.emitter.Emit(emit.Event{
		RunID: runID,
		Seq:   cp.Seq,
		Msg:   "checkpoint_saved",
		Meta: map[string]interface{}{
			"checkpoint_id": cpID,
			"offset":        cp.Offset,
		},
	})
	return nil
}

// ResumeFromCheckpoint starts run newRunID at the position stored under
// cpID. src must replay the original input from the beginning; the first
// Offset units are skipped and token numbering continues from the
// checkpoint. newRunID must not already be journaled.
func (t *Tokenizer[U]) ResumeFromCheckpoint(ctx context.Context, cpID, newRunID string, src Source[U]) ([]Token[U], error) {
	if t.store == nil {
		return nil, &TokenizerError{Message: "store is required for checkpoints", Code: "MISSING_STORE", Offset: -1}
	}

	cp, err := t.store.LoadCheckpoint(ctx, cpID)
	if err != nil {
		return nil, &TokenizerError{Message: "cannot resume: " + err.Error(), Code: "CHECKPOINT_NOT_FOUND", Offset: -1, Err: err}
	}

	t.emitter.Emit(emit.Event{
		RunID: newRunID,
		Seq:   cp.Seq,
		Msg:   "resume",
		Meta: map[string]interface{}{
			"checkpoint_id": cpID,
			"offset":        cp.Offset,
		},
	})

	pb := NewPushback(src)
	for i := 0; i < cp.Offset; i++ {
		if _, ok := pb.Next(); !ok {
			return nil, &TokenizerError{
				Message: fmt.Sprintf("source ended after %d units, checkpoint is at %d", i, cp.Offset),
				Code:    "SOURCE_TOO_SHORT",
				Offset:  i,
			}
		}
	}
	return t.run(ctx, newRunID, pb, cp.Seq, cp.Offset)
}
