// Package history persists accepted queries in a SQLite database under
// the config dir, so a new session can recall what was searched before.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/asheshgoplani/sift/internal/logging"
)

var log = logging.ForComponent(logging.CompHistory)

// SchemaVersion tracks the current database schema version. Bump when
// adding migrations.
const SchemaVersion = 1

// DefaultLimit is how many queries are retained when no limit is
// configured.
const DefaultLimit = 500

// Store wraps the history database. Safe for concurrent use within one
// process; WAL mode plus a busy timeout keeps concurrent sift
// processes from tripping over each other.
type Store struct {
	db    *sql.DB
	limit int
}

// Open creates or opens the history database at dbPath.
func Open(dbPath string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: wal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: busy timeout: %w", err)
	}

	s := &Store{db: db, limit: limit}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("history: create metadata: %w", err)
	}
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS queries (
			query     TEXT PRIMARY KEY,
			uses      INTEGER NOT NULL DEFAULT 1,
			last_used INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("history: create queries: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprintf("%d", SchemaVersion),
	); err != nil {
		return fmt.Errorf("history: set schema version: %w", err)
	}
	return tx.Commit()
}

// Add records one accepted query, bumping its use count if it was seen
// before, and prunes the oldest entries past the retention limit.
func (s *Store) Add(query string) error {
	if query == "" {
		return nil
	}
	now := time.Now().Unix()
	if _, err := s.db.Exec(`
		INSERT INTO queries (query, uses, last_used) VALUES (?, 1, ?)
		ON CONFLICT(query) DO UPDATE SET uses = uses + 1, last_used = excluded.last_used
	`, query, now); err != nil {
		return fmt.Errorf("history: add: %w", err)
	}
	if _, err := s.db.Exec(`
		DELETE FROM queries WHERE query NOT IN (
			SELECT query FROM queries ORDER BY last_used DESC LIMIT ?
		)
	`, s.limit); err != nil {
		return fmt.Errorf("history: prune: %w", err)
	}
	return nil
}

// Recent returns up to limit queries, most recently used first.
func (s *Store) Recent(limit int) ([]string, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	rows, err := s.db.Query(
		`SELECT query FROM queries ORDER BY last_used DESC, uses DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Close checkpoints WAL and closes the database.
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// OpenDefault opens the history store at its standard location inside
// dir, logging and returning nil when it cannot be opened: history is a
// convenience, never a reason to fail the session.
func OpenDefault(dir string, limit int) *Store {
	if dir == "" {
		return nil
	}
	s, err := Open(filepath.Join(dir, "history.db"), limit)
	if err != nil {
		log.Warn("history unavailable", "err", err)
		return nil
	}
	return s
}
