package db

import (
	"context"
	"database/sql"

	"github.com/user/jobboard/internal/query"
)

// ListResults returns the newest results by published date.
func (s *Store) ListResults(ctx context.Context, limit int) ([]Result, error) {
	out := make([]Result, 0)
	err := s.list(ctx, KindResults, limit, func(rows *sql.Rows) error {
		var r Result
		if err := rows.Scan(&r.ID, &r.Title, &r.ExamName, &r.ResultLink, &r.PublishedDate, &r.CreatedAt); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAdmitCards returns the most recently added admit cards.
func (s *Store) ListAdmitCards(ctx context.Context, limit int) ([]AdmitCard, error) {
	out := make([]AdmitCard, 0)
	err := s.list(ctx, KindAdmitCards, limit, func(rows *sql.Rows) error {
		var a AdmitCard
		if err := rows.Scan(&a.ID, &a.Title, &a.ExamName, &a.DownloadLink, &a.ExamDate, &a.CreatedAt); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAnswerKeys returns the newest answer keys by published date.
func (s *Store) ListAnswerKeys(ctx context.Context, limit int) ([]AnswerKey, error) {
	out := make([]AnswerKey, 0)
	err := s.list(ctx, KindAnswerKeys, limit, func(rows *sql.Rows) error {
		var k AnswerKey
		if err := rows.Scan(&k.ID, &k.Title, &k.ExamName, &k.DownloadLink, &k.PublishedDate, &k.CreatedAt); err != nil {
			return err
		}
		out = append(out, k)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// list runs the limit-only listing of a kind and hands each row to scan.
func (s *Store) list(ctx context.Context, kind Kind, limit int, scan func(*sql.Rows) error) error {
	op := "list " + kind.Label()

	stmt, err := query.Select(tables[kind], query.Filter{Limit: limit})
	if err != nil {
		return storeErr(op, err)
	}

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return storeErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return storeErr(op, err)
		}
	}
	return storeErr(op, rows.Err())
}
