package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/jobboard/internal/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *db.Store) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store), store
}

func insertJob(t *testing.T, store *db.Store, j db.Job) db.Job {
	t.Helper()
	require.NoError(t, store.InsertJob(context.Background(), &j))
	return j
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestJobs_CategoryEndToEnd(t *testing.T) {
	s, store := newTestServer(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	insertJob(t, store, db.Job{Title: "RRB NTPC", Department: "Railway Board", Category: "Railway", CreatedAt: base})
	banking := insertJob(t, store, db.Job{Title: "IBPS PO", Department: "IBPS", Category: "Banking", CreatedAt: base.Add(time.Hour)})
	insertJob(t, store, db.Job{Title: "Agniveer", Department: "Indian Army", Category: "Defence", CreatedAt: base.Add(2 * time.Hour)})

	w := do(t, s, http.MethodGet, "/api/jobs?category=Banking&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	jobs := decode[[]db.Job](t, w)
	require.Len(t, jobs, 1)
	assert.Equal(t, banking.ID, jobs[0].ID)
	assert.Equal(t, "Banking", jobs[0].Category)
}

func TestJobs_SearchLimitAndPage(t *testing.T) {
	s, store := newTestServer(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		insertJob(t, store, db.Job{Title: "Clerk", Department: "State Bank", Category: "Banking", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	insertJob(t, store, db.Job{Title: "Constable", Department: "Delhi Police", Category: "State Government", CreatedAt: base})

	w := do(t, s, http.MethodGet, "/api/jobs?search=BANK", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]db.Job](t, w), 10, "default limit")

	w = do(t, s, http.MethodGet, "/api/jobs?search=police&limit=abc", "")
	assert.Len(t, decode[[]db.Job](t, w), 1)

	first := do(t, s, http.MethodGet, "/api/jobs?limit=3&page=1", "").Body.String()
	second := do(t, s, http.MethodGet, "/api/jobs?limit=3&page=2", "").Body.String()
	assert.Equal(t, first, second, "page is ignored")
}

func TestJobs_FiltersMatchAsGiven(t *testing.T) {
	s, store := newTestServer(t)
	insertJob(t, store, db.Job{Title: "SBI Clerk", Department: "State Bank", Category: "Banking"})

	for _, target := range []string{"/api/jobs?category=Banking+", "/api/jobs?search=Clerk+", "/api/jobs?category=%20Banking"} {
		w := do(t, s, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Empty(t, decode[[]db.Job](t, w), target)
	}

	w := do(t, s, http.MethodGet, "/api/jobs?category=Banking&search=Clerk", "")
	assert.Len(t, decode[[]db.Job](t, w), 1)
}

func TestJobs_LimitLeadingInteger(t *testing.T) {
	s, store := newTestServer(t)
	for i := 0; i < 8; i++ {
		insertJob(t, store, db.Job{Title: "Clerk", Department: "State Bank", Category: "Banking"})
	}

	for _, limit := range []string{"5.5", "5abc"} {
		w := do(t, s, http.MethodGet, "/api/jobs?limit="+limit, "")
		assert.Len(t, decode[[]db.Job](t, w), 5, limit)
	}
}

func TestJobs_EmptyIsArray(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/api/jobs", "/api/results", "/api/admit-cards", "/api/answer-keys"} {
		w := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()), path)
	}
}

func TestJob_ByID(t *testing.T) {
	s, store := newTestServer(t)
	j := insertJob(t, store, db.Job{Title: "SSC CGL", Department: "SSC", Category: "Central Government", Posts: 7500, LastDate: "2024-07-24"})

	w := do(t, s, http.MethodGet, "/api/jobs/"+strconv.FormatInt(j.ID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[db.Job](t, w)
	assert.Equal(t, "SSC CGL", got.Title)
	assert.Equal(t, 7500, got.Posts)
	assert.Equal(t, "2024-07-24", got.LastDate)

	for _, path := range []string{"/api/jobs/9999", "/api/jobs/abc"} {
		w = do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"Job not found"}`, w.Body.String())
	}
}

func TestCounts(t *testing.T) {
	s, store := newTestServer(t)
	insertJob(t, store, db.Job{Title: "IBPS PO", Department: "IBPS", Category: "Banking"})
	insertJob(t, store, db.Job{Title: "SBI Clerk", Department: "State Bank", Category: "Banking"})
	insertJob(t, store, db.Job{Title: "RRB NTPC", Department: "Railway Board", Category: "Railway"})

	w := do(t, s, http.MethodGet, "/api/jobs/count?category=Banking", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	listed := decode[[]db.Job](t, do(t, s, http.MethodGet, "/api/jobs?category=Banking&limit=1000", ""))
	assert.Len(t, listed, 2, "count agrees with listing")

	w = do(t, s, http.MethodGet, "/api/jobs/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode[[]db.CategoryCount](t, w)
	require.Len(t, counts, len(db.Categories))
	byName := map[string]int{}
	for _, c := range counts {
		byName[c.Category] = c.Count
	}
	assert.Equal(t, 2, byName["Banking"])
	assert.Equal(t, 1, byName["Railway"])
	assert.Equal(t, 0, byName["Teaching"])
}

func TestRecords(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.InsertResult(ctx, &db.Result{Title: "SSC CHSL Result", ExamName: "SSC CHSL", PublishedDate: "2024-01-10"}))
	require.NoError(t, store.InsertResult(ctx, &db.Result{Title: "UPSC CSE Result", ExamName: "UPSC CSE", PublishedDate: "2024-02-10"}))
	require.NoError(t, store.InsertAdmitCard(ctx, &db.AdmitCard{Title: "IBPS PO Admit Card", ExamName: "IBPS PO"}))
	require.NoError(t, store.InsertAnswerKey(ctx, &db.AnswerKey{Title: "SSC GD Key", ExamName: "SSC GD"}))

	results := decode[[]db.Result](t, do(t, s, http.MethodGet, "/api/results?limit=1", ""))
	require.Len(t, results, 1)
	assert.Equal(t, "UPSC CSE Result", results[0].Title)

	assert.Len(t, decode[[]db.AdmitCard](t, do(t, s, http.MethodGet, "/api/admit-cards", "")), 1)
	assert.Len(t, decode[[]db.AnswerKey](t, do(t, s, http.MethodGet, "/api/answer-keys", "")), 1)
}

func TestStoreFailureIs500(t *testing.T) {
	s, store := newTestServer(t)
	store.Close()

	for _, path := range []string{"/api/jobs", "/api/jobs/1", "/api/results", "/api/jobs/count"} {
		w := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)

		body := decode[map[string]string](t, w)
		assert.NotEmpty(t, body["error"])
		assert.NotContains(t, body["error"], "sql", "no internal detail")
	}

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSubscribe(t *testing.T) {
	s, store := newTestServer(t)

	body := `{"endpoint":"https://push.example/abc","expirationTime":null,"keys":{"p256dh":"k","auth":"a"}}`
	w := do(t, s, http.MethodPost, "/api/subscribe", body)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]string](t, w)["id"]
	assert.NotEmpty(t, id)

	// re-registering keeps the id
	w = do(t, s, http.MethodPost, "/api/subscribe", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, id, decode[map[string]string](t, w)["id"])

	subs, err := store.ListSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)

	w = do(t, s, http.MethodPost, "/api/subscribe", `{"endpoint":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodPost, "/api/subscribe", `{"keys":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/subscribe", `{"endpoint":"https://push.example/abc"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	subs, err = store.ListSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListenShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Listen(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
