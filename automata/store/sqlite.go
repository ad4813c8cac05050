package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS token_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			rule TEXT NOT NULL,
			unit_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			units TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_token_journal_run_id ON token_journal(run_id)`,
		`CREATE TABLE IF NOT EXISTS tokenizer_checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			checkpoint_id TEXT NOT NULL UNIQUE,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			unit_offset INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	upsertToken: `
		INSERT INTO token_journal (run_id, seq, rule, unit_offset, end_offset, units)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO UPDATE SET
			rule = excluded.rule,
			unit_offset = excluded.unit_offset,
			end_offset = excluded.end_offset,
			units = excluded.units
	`,
	upsertCheckpoint: `
		INSERT INTO tokenizer_checkpoints (checkpoint_id, run_id, seq, unit_offset)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(checkpoint_id) DO UPDATE SET
			run_id = excluded.run_id,
			seq = excluded.seq,
			unit_offset = excluded.unit_offset,
			updated_at = CURRENT_TIMESTAMP
	`,
}

// SQLiteStore is a SQLite implementation of Store[U] backed by
// modernc.org/sqlite (pure Go, no cgo).
//
// Schema:
//   - token_journal: one row per token, unique on (run_id, seq)
//   - tokenizer_checkpoints: named resumable positions
//
// The database runs in WAL mode with a single writer connection.
type SQLiteStore[U any] struct {
	dbStore[U]
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates the schema. Use ":memory:" for a throwaway database.
//
// Example:
//
//	st, err := store.NewSQLiteStore[rune]("./tokens.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
func NewSQLiteStore[U any](path string) (*SQLiteStore[U], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite supports one writer at a time
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore[U]{
		dbStore: dbStore[U]{db: db, dialect: sqliteDialect},
		path:    path,
	}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *SQLiteStore[U]) Path() string {
	return s.path
}
