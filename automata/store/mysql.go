package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS token_journal (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			seq INT NOT NULL,
			rule VARCHAR(255) NOT NULL,
			unit_offset BIGINT NOT NULL,
			end_offset BIGINT NOT NULL,
			units JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_run_id (run_id),
			UNIQUE KEY unique_run_seq (run_id, seq)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS tokenizer_checkpoints (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			checkpoint_id VARCHAR(255) NOT NULL UNIQUE,
			run_id VARCHAR(255) NOT NULL,
			seq INT NOT NULL,
			unit_offset BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	},
	upsertToken: `
		INSERT INTO token_journal (run_id, seq, rule, unit_offset, end_offset, units)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			rule = VALUES(rule),
			unit_offset = VALUES(unit_offset),
			end_offset = VALUES(end_offset),
			units = VALUES(units)
	`,
	upsertCheckpoint: `
		INSERT INTO tokenizer_checkpoints (checkpoint_id, run_id, seq, unit_offset)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			run_id = VALUES(run_id),
			seq = VALUES(seq),
			unit_offset = VALUES(unit_offset)
	`,
}

// MySQLStore is a MySQL/MariaDB implementation of Store[U].
//
// It suits deployments where several processes tokenize into one shared
// journal.
type MySQLStore[U any] struct {
	dbStore[U]
}

// NewMySQLStore connects using dsn, configures the pool and migrates the
// schema.
//
// DSN format:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// NEVER hardcode credentials. Read the DSN from the environment:
//
//	dsn := os.Getenv("MUNCH_MYSQL_DSN")
//	st, err := store.NewMySQLStore[rune](dsn)
func NewMySQLStore[U any](dsn string) (*MySQLStore[U], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s, err := NewMySQLStoreFromDB[U](db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewMySQLStoreFromDB wraps an already-open handle and migrates the schema.
// The store takes ownership of db and closes it on Close.
func NewMySQLStoreFromDB[U any](db *sql.DB) (*MySQLStore[U], error) {
	s := &MySQLStore[U]{dbStore: dbStore[U]{db: db, dialect: mysqlDialect}}
	if err := s.createTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Stats returns connection pool statistics.
func (s *MySQLStore[U]) Stats() sql.DBStats {
	return s.db.Stats()
}
