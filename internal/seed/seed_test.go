package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/query"
)

func newStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad(t *testing.T) {
	f, err := Load()
	require.NoError(t, err)
	assert.Len(t, f.Jobs, 5)
	assert.Len(t, f.Results, 3)
	assert.Len(t, f.AdmitCards, 2)
	assert.Len(t, f.AnswerKeys, 2)
	assert.Equal(t, 13487, f.Jobs[0].Posts)
	assert.Equal(t, "2024-08-15", f.Jobs[0].LastDate)
}

func TestApply_OnlyEmptyTables(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	f, err := Load()
	require.NoError(t, err)

	require.NoError(t, store.InsertResult(ctx, &db.Result{Title: "Existing", ExamName: "X"}))

	report, err := Apply(ctx, store, f)
	require.NoError(t, err)
	assert.Equal(t, 5, report[db.KindJobs])
	assert.Zero(t, report[db.KindResults])
	assert.Equal(t, 9, report.Total())

	// a second run inserts nothing
	report, err = Apply(ctx, store, f)
	require.NoError(t, err)
	assert.Zero(t, report.Total())

	banking, err := store.ListJobs(ctx, query.Filter{Category: "Banking"})
	require.NoError(t, err)
	require.Len(t, banking, 1)
	assert.Equal(t, "IBPS PO Recruitment", banking[0].Title)

	results, err := store.ListResults(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jobs:
  - title: Teacher Eligibility Test
    department: CBSE
    category: Teaching
`), 0644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Jobs, 1)
	assert.Empty(t, f.Results)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_RequiresJobFields(t *testing.T) {
	_, err := Parse([]byte("jobs:\n  - title: Untitled\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("jobs: [\n"))
	assert.Error(t, err)
}
