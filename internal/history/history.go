// Package history caches fetched usage records in a local SQLite database so
// past windows can be reviewed offline and re-rendered without refetching.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/veloera/velo/internal/usage"
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
	created_at INTEGER NOT NULL,
	model_name TEXT NOT NULL,
	quota      REAL NOT NULL,
	count      REAL NOT NULL,
	token_used REAL NOT NULL,
	PRIMARY KEY (created_at, model_name)
);
CREATE INDEX IF NOT EXISTS idx_usage_created ON usage_records (created_at);
`

// Store is a local cache of usage records keyed by (timestamp, model).
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts a batch of records. Refetching a window overwrites the cached
// rows with the gateway's latest numbers rather than double counting.
func (s *Store) Save(ctx context.Context, records []usage.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_records (created_at, model_name, quota, count, token_used)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (created_at, model_name) DO UPDATE SET
			quota = excluded.quota,
			count = excluded.count,
			token_used = excluded.token_used`)
	if err != nil {
		return fmt.Errorf("prepare save: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		name := r.ModelName
		if name == "" {
			name = usage.UnknownModel
		}
		if _, err := stmt.ExecContext(ctx, r.CreatedAt, name, r.Quota, r.Count, r.TokenUsed); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
	}
	return tx.Commit()
}

// Load returns cached records with created_at in [from, to], oldest first.
func (s *Store) Load(ctx context.Context, from, to int64) ([]usage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, model_name, quota, count, token_used
		FROM usage_records
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var out []usage.Record
	for rows.Next() {
		var r usage.Record
		if err := rows.Scan(&r.CreatedAt, &r.ModelName, &r.Quota, &r.Count, &r.TokenUsed); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
