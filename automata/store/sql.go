package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// dialect holds the statements that differ between database engines.
type dialect struct {
	schema           []string
	upsertToken      string
	upsertCheckpoint string
}

const (
	selectRun = `
		SELECT seq, rule, unit_offset, end_offset, units
		FROM token_journal
		WHERE run_id = ?
		ORDER BY seq ASC
	`
	selectLatest = `
		SELECT seq, rule, unit_offset, end_offset, units
		FROM token_journal
		WHERE run_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`
	selectCheckpoint = `
		SELECT run_id, seq, unit_offset
		FROM tokenizer_checkpoints
		WHERE checkpoint_id = ?
	`
)

// dbStore implements Store[U] over database/sql. SQLiteStore and MySQLStore
// embed it and supply their dialect.
type dbStore[U any] struct {
	db      *sql.DB
	dialect dialect
	mu      sync.RWMutex
	closed  bool
}

func (s *dbStore[U]) createTables(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *dbStore[U]) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// SaveToken persists rec, replacing any record with the same run and Seq.
func (s *dbStore[U]) SaveToken(ctx context.Context, runID string, rec TokenRecord[U]) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.saveToken(ctx, s.db, runID, rec)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *dbStore[U]) saveToken(ctx context.Context, db execer, runID string, rec TokenRecord[U]) error {
	unitsJSON, err := json.Marshal(rec.Units)
	if err != nil {
		return fmt.Errorf("failed to marshal units: %w", err)
	}
	if _, err := db.ExecContext(ctx, s.dialect.upsertToken, runID, rec.Seq, rec.Rule, rec.Offset, rec.End, string(unitsJSON)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// SaveTokenBatch persists records in one transaction. Either every record is
// stored or none is.
func (s *dbStore[U]) SaveTokenBatch(ctx context.Context, runID string, records []TokenRecord[U]) error {
	if len(records) == 0 {
		return nil
	}
	return s.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, rec := range records {
			if err := s.saveToken(ctx, tx, runID, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithTransaction runs fn inside a transaction, committing if fn returns nil
// and rolling back otherwise.
func (s *dbStore[U]) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadRun returns the run's journal ordered by Seq.
func (s *dbStore[U]) LoadRun(ctx context.Context, runID string) ([]TokenRecord[U], error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectRun, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	defer rows.Close()

	var out []TokenRecord[U]
	for rows.Next() {
		rec, err := scanToken[U](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// LoadLatest returns the run's token with the highest Seq.
func (s *dbStore[U]) LoadLatest(ctx context.Context, runID string) (TokenRecord[U], error) {
	if err := s.checkOpen(); err != nil {
		return TokenRecord[U]{}, err
	}

	rec, err := scanToken[U](s.db.QueryRowContext(ctx, selectLatest, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return TokenRecord[U]{}, ErrNotFound
	}
	return rec, err
}

// SaveCheckpoint upserts cp.
func (s *dbStore[U]) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsertCheckpoint, cp.ID, cp.RunID, cp.Seq, cp.Offset); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the checkpoint named cpID.
func (s *dbStore[U]) LoadCheckpoint(ctx context.Context, cpID string) (Checkpoint, error) {
	if err := s.checkOpen(); err != nil {
		return Checkpoint{}, err
	}

	cp := Checkpoint{ID: cpID}
	err := s.db.QueryRowContext(ctx, selectCheckpoint, cpID).Scan(&cp.RunID, &cp.Seq, &cp.Offset)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return cp, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *dbStore[U]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *dbStore[U]) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken[U any](row rowScanner) (TokenRecord[U], error) {
	var (
		rec       TokenRecord[U]
		unitsJSON string
	)
	if err := row.Scan(&rec.Seq, &rec.Rule, &rec.Offset, &rec.End, &unitsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan token: %w", err)
	}
	if err := json.Unmarshal([]byte(unitsJSON), &rec.Units); err != nil {
		return TokenRecord[U]{}, fmt.Errorf("failed to unmarshal units: %w", err)
	}
	return rec, nil
}
