package localstate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// StateFile is the client state database inside the data directory.
const StateFile = "state.db"

// SQLite is the durable Store, one metadata table in its own database file
// so client state never mixes with server records.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the client state database in dataDir.
func OpenSQLite(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, StateFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	// The watcher and the browser may write at the same time; one connection
	// serializes them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set commits before returning, so a caller that sees nil knows the value
// survives a crash.
func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM metadata WHERE key = ?`, key)
	return err
}
