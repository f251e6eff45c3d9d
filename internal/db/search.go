package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/user/jobboard/internal/query"
)

var tables = map[Kind]query.Table{
	KindJobs: {
		Name: "jobs",
		Columns: []string{
			"id", "title", "department", "category",
			"COALESCE(location, '')", "COALESCE(qualification, '')", "COALESCE(posts, 0)",
			"COALESCE(last_date, '')", "COALESCE(application_link, '')", "created_at",
		},
		OrderBy:  "created_at",
		Category: "category",
		Search:   []string{"title", "department"},
	},
	KindResults: {
		Name:    "results",
		Columns: []string{"id", "title", "exam_name", "COALESCE(result_link, '')", "COALESCE(published_date, '')", "created_at"},
		OrderBy: "published_date",
	},
	KindAdmitCards: {
		Name:    "admit_cards",
		Columns: []string{"id", "title", "exam_name", "COALESCE(download_link, '')", "COALESCE(exam_date, '')", "created_at"},
		OrderBy: "created_at",
	},
	KindAnswerKeys: {
		Name:    "answer_keys",
		Columns: []string{"id", "title", "exam_name", "COALESCE(download_link, '')", "COALESCE(published_date, '')", "created_at"},
		OrderBy: "published_date",
	},
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (Job, error) {
	var j Job
	err := r.Scan(&j.ID, &j.Title, &j.Department, &j.Category,
		&j.Location, &j.Qualification, &j.Posts,
		&j.LastDate, &j.ApplicationLink, &j.CreatedAt)
	return j, err
}

// ListJobs returns jobs matching the filter, newest first. An empty match is
// an empty, non-nil slice.
func (s *Store) ListJobs(ctx context.Context, f query.Filter) ([]Job, error) {
	stmt, err := query.Select(tables[KindJobs], f)
	if err != nil {
		return nil, storeErr("list jobs", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, storeErr("list jobs", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, storeErr("list jobs", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, storeErr("list jobs", rows.Err())
}

// GetJob returns a single job or ErrNotFound.
func (s *Store) GetJob(ctx context.Context, id int64) (*Job, error) {
	t := tables[KindJobs]
	q := fmt.Sprintf("SELECT %s FROM jobs WHERE id = ?", strings.Join(t.Columns, ", "))

	j, err := scanJob(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get job", err)
	}
	return &j, nil
}

// CountJobs counts every job the filter matches, ignoring its limit.
func (s *Store) CountJobs(ctx context.Context, f query.Filter) (int, error) {
	stmt, err := query.Count(tables[KindJobs], f)
	if err != nil {
		return 0, storeErr("count jobs", err)
	}
	var n int
	err = s.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n)
	return n, storeErr("count jobs", err)
}

// CountJobsByCategory returns one bucket per first-class category, in
// Categories order, including empty ones.
func (s *Store) CountJobsByCategory(ctx context.Context) ([]CategoryCount, error) {
	stmt, err := query.CountByCategory(tables[KindJobs], Categories)
	if err != nil {
		return nil, storeErr("count categories", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, storeErr("count categories", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(Categories))
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, storeErr("count categories", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("count categories", err)
	}

	out := make([]CategoryCount, len(Categories))
	for i, c := range Categories {
		out[i] = CategoryCount{Category: c, Count: counts[c]}
	}
	return out, nil
}
