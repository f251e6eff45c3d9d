package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DBFile is the record database file name inside the data directory.
const DBFile = "jobboard.db"

// Store is the read-mostly record store behind the listing API.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the record database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return Open(filepath.Join(dataDir, DBFile))
}

// Open opens the record database at path and applies the schema.
//
// WAL lets listing reads proceed while seeding writes; the busy timeout
// absorbs short lock contention instead of failing the request.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return storeErr("ping", s.db.PingContext(ctx))
}

// Count returns the number of rows of a kind.
func (s *Store) Count(ctx context.Context, kind Kind) (int, error) {
	t, ok := tables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.Name).Scan(&n)
	return n, storeErr("count "+kind.Label(), err)
}

// InsertJob appends a job and fills in its id. A zero CreatedAt takes the
// database default.
func (s *Store) InsertJob(ctx context.Context, j *Job) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (title, department, category, location, qualification, posts, last_date, application_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		j.Title, j.Department, j.Category,
		nullString(j.Location), nullString(j.Qualification), nullInt(j.Posts),
		nullString(j.LastDate), nullString(j.ApplicationLink),
		nullTime(j.CreatedAt),
	)
	if err != nil {
		return storeErr("insert job", err)
	}
	j.ID, err = res.LastInsertId()
	return storeErr("insert job", err)
}

func (s *Store) InsertResult(ctx context.Context, r *Result) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO results (title, exam_name, result_link, published_date, created_at)
		VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		r.Title, r.ExamName, nullString(r.ResultLink), nullString(r.PublishedDate), nullTime(r.CreatedAt),
	)
	if err != nil {
		return storeErr("insert result", err)
	}
	r.ID, err = res.LastInsertId()
	return storeErr("insert result", err)
}

func (s *Store) InsertAdmitCard(ctx context.Context, a *AdmitCard) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO admit_cards (title, exam_name, download_link, exam_date, created_at)
		VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		a.Title, a.ExamName, nullString(a.DownloadLink), nullString(a.ExamDate), nullTime(a.CreatedAt),
	)
	if err != nil {
		return storeErr("insert admit card", err)
	}
	a.ID, err = res.LastInsertId()
	return storeErr("insert admit card", err)
}

func (s *Store) InsertAnswerKey(ctx context.Context, k *AnswerKey) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO answer_keys (title, exam_name, download_link, published_date, created_at)
		VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		k.Title, k.ExamName, nullString(k.DownloadLink), nullString(k.PublishedDate), nullTime(k.CreatedAt),
	)
	if err != nil {
		return storeErr("insert answer key", err)
	}
	k.ID, err = res.LastInsertId()
	return storeErr("insert answer key", err)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// nullTime stores timestamps in the same layout CURRENT_TIMESTAMP produces,
// so explicit and defaulted rows sort together.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
