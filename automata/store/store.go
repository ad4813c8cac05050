// Package store provides persistence for tokenizer output: a per-run token
// journal plus named checkpoints that allow a run to be resumed on a fresh
// source.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested run ID or checkpoint ID does not exist.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by database-backed stores after Close.
var ErrClosed = errors.New("store is closed")

// Store persists the tokens produced by a tokenizer run.
//
// Implementations:
//   - MemStore: in-memory, for tests and short-lived processes
//   - SQLiteStore: single-file database, zero setup
//   - MySQLStore: shared database for multi-process deployments
//
// Type parameter U is the input unit type. Units are persisted as JSON, so U
// must round-trip through encoding/json.
type Store[U any] interface {
	// SaveToken appends a token to the journal of runID. Saving the same
	// sequence number twice replaces the earlier record.
	SaveToken(ctx context.Context, runID string, rec TokenRecord[U]) error

	// LoadRun returns every token of runID ordered by sequence number.
	// Returns ErrNotFound if the run has no tokens.
	LoadRun(ctx context.Context, runID string) ([]TokenRecord[U], error)

	// LoadLatest returns the token with the highest sequence number.
	// Returns ErrNotFound if the run has no tokens.
	LoadLatest(ctx context.Context, runID string) (TokenRecord[U], error)

	// SaveCheckpoint records a resumable position. An existing checkpoint
	// with the same ID is overwritten.
	SaveCheckpoint(ctx context.Context, cp Checkpoint) error

	// LoadCheckpoint returns the checkpoint named cpID, or ErrNotFound.
	LoadCheckpoint(ctx context.Context, cpID string) (Checkpoint, error)
}

var (
	_ Store[rune] = (*MemStore[rune])(nil)
	_ Store[rune] = (*SQLiteStore[rune])(nil)
	_ Store[rune] = (*MySQLStore[rune])(nil)
)

// TokenRecord is one journaled token.
type TokenRecord[U any] struct {
	// Seq is the token's index within its run (0-based).
	Seq int `json:"seq"`

	// Rule names the rule that matched.
	Rule string `json:"rule"`

	// Offset is the position of the token's first unit in the input.
	Offset int `json:"offset"`

	// End is where the next token starts. It exceeds Offset+len(Units) when
	// units after the match were discarded.
	End int `json:"end"`

	// Units is the matched prefix.
	Units []U `json:"units"`
}

// Checkpoint is a named, resumable tokenizer position.
type Checkpoint struct {
	// ID is the user-chosen checkpoint name.
	ID string `json:"id"`

	// RunID is the run the checkpoint was taken from.
	RunID string `json:"run_id"`

	// Seq is the sequence number the next token will receive.
	Seq int `json:"seq"`

	// Offset is the number of input units consumed so far.
	Offset int `json:"offset"`
}
