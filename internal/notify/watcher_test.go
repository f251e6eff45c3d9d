package notify

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/localstate"
	"github.com/user/jobboard/internal/query"
)

type fakeJobs struct {
	mu     sync.Mutex
	jobs   []db.Job
	err    error
	calls  int
	limits []int
}

func (f *fakeJobs) Jobs(_ context.Context, q query.Filter) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.limits = append(f.limits, q.Limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

type recorder struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func jobsWithIDs(ids ...int64) []db.Job {
	out := make([]db.Job, len(ids))
	for i, id := range ids {
		out[i] = db.Job{ID: id, Title: "Job " + strconv.FormatInt(id, 10)}
	}
	return out
}

func newWatcher(t *testing.T, src *fakeJobs) (*Watcher, *localstate.Memory, *recorder, *clock) {
	t.Helper()
	kv := localstate.NewMemory()
	rec := &recorder{}
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	w := New(DefaultConfig(), src, kv, rec, WithClock(clk.now))
	return w, kv, rec, clk
}

func grant(t *testing.T, kv localstate.Store) {
	t.Helper()
	require.NoError(t, kv.Set(localstate.KeyPermission, string(PermissionGranted)))
}

func get(t *testing.T, kv localstate.Store, key string) string {
	t.Helper()
	v, _, err := kv.Get(key)
	require.NoError(t, err)
	return v
}

func TestCheck_DeltaAboveWatermark(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(7, 6, 5, 4, 3)}
	w, kv, rec, _ := newWatcher(t, src)
	grant(t, kv)
	require.NoError(t, kv.Set(localstate.KeyLastJobID, "5"))

	res, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Ran)

	var ids []int64
	for _, j := range res.NewJobs {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []int64{7, 6}, ids)
	assert.Equal(t, "7", get(t, kv, localstate.KeyLastJobID))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "2 New Government Jobs Available!", rec.sent[0].Title)
	assert.Equal(t, "Latest: Job 7 and 1 more", rec.sent[0].Body)
	assert.Equal(t, []int{5}, src.limits)
	assert.Equal(t, Idle, w.State())
}

func TestCheck_NoWatermarkSetsItSilently(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(9, 8, 2)}
	w, kv, rec, clk := newWatcher(t, src)
	grant(t, kv)

	res, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Empty(t, res.NewJobs)
	assert.Zero(t, rec.count())
	assert.Equal(t, "9", get(t, kv, localstate.KeyLastJobID))

	// the next batch after the cool-down is measured against it
	src.jobs = jobsWithIDs(10, 9, 8)
	clk.advance(11 * time.Minute)
	res, err = w.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.NewJobs, 1)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "New Government Job Available!", rec.sent[0].Title)
	assert.Equal(t, "Job 10", rec.sent[0].Body)
}

func TestCheck_WatermarkNeverDecreases(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(4, 3)}
	w, kv, rec, _ := newWatcher(t, src)
	grant(t, kv)
	require.NoError(t, kv.Set(localstate.KeyLastJobID, "12"))

	res, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.NewJobs)
	assert.Zero(t, rec.count())
	assert.Equal(t, "12", get(t, kv, localstate.KeyLastJobID))
}

func TestCheck_EmptyFetch(t *testing.T) {
	src := &fakeJobs{}
	w, kv, rec, clk := newWatcher(t, src)
	grant(t, kv)

	res, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Zero(t, rec.count())

	_, ok, _ := kv.Get(localstate.KeyLastJobID)
	assert.False(t, ok)
	assert.Equal(t, strconv.FormatInt(clk.now().UnixMilli(), 10), get(t, kv, localstate.KeyLastJobCheck))
}

func TestCheck_Cooldown(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(1)}
	w, kv, _, clk := newWatcher(t, src)
	grant(t, kv)

	_, err := w.Check(context.Background())
	require.NoError(t, err)

	clk.advance(9 * time.Minute)
	res, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Ran)
	assert.Equal(t, 1, src.calls)

	clk.advance(2 * time.Minute)
	res, err = w.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Equal(t, 2, src.calls)
}

func TestCheck_FetchFailureLeavesStateUntouched(t *testing.T) {
	src := &fakeJobs{err: errors.New("connection refused")}
	w, kv, rec, _ := newWatcher(t, src)
	grant(t, kv)
	require.NoError(t, kv.Set(localstate.KeyLastJobID, "3"))

	_, err := w.Check(context.Background())
	assert.Error(t, err)
	assert.Zero(t, rec.count())
	assert.Equal(t, "3", get(t, kv, localstate.KeyLastJobID))
	_, ok, _ := kv.Get(localstate.KeyLastJobCheck)
	assert.False(t, ok)
	assert.Equal(t, Idle, w.State())
}

func TestCheck_PersistFailureSuppressesNotification(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(8)}
	w, kv, rec, _ := newWatcher(t, src)
	grant(t, kv)
	require.NoError(t, kv.Set(localstate.KeyLastJobID, "3"))
	kv.FailWrites = errors.New("read-only")

	_, err := w.Check(context.Background())
	assert.Error(t, err)
	assert.Zero(t, rec.count())
}

func TestCheck_InertWithoutPermission(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(kv localstate.Store)
	}{
		{"default", func(localstate.Store) {}},
		{"denied", func(kv localstate.Store) { kv.Set(localstate.KeyPermission, string(PermissionDenied)) }},
		{"disabled", func(kv localstate.Store) {
			kv.Set(localstate.KeyPermission, string(PermissionGranted))
			kv.Set(localstate.KeyNotifications, "false")
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeJobs{jobs: jobsWithIDs(7)}
			w, kv, rec, _ := newWatcher(t, src)
			require.NoError(t, kv.Set(localstate.KeyLastJobID, "1"))
			tc.setup(kv)

			res, err := w.Check(context.Background())
			require.NoError(t, err)
			assert.False(t, res.Ran)
			assert.Zero(t, src.calls)
			assert.Zero(t, rec.count())
		})
	}
}

func TestCheck_NotifierErrorStillAdvancesWatermark(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(6)}
	w, kv, rec, _ := newWatcher(t, src)
	rec.err = errors.New("chat not found")
	grant(t, kv)
	require.NoError(t, kv.Set(localstate.KeyLastJobID, "5"))

	_, err := w.Check(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "6", get(t, kv, localstate.KeyLastJobID))
}

func TestRun_FirstCheckAfterInitialDelay(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(1)}
	kv := localstate.NewMemory()
	grant(t, kv)

	cfg := DefaultConfig()
	cfg.InitialDelay = 10 * time.Millisecond
	w := New(cfg, src, kv, &recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPrompt(t *testing.T) {
	w, kv, _, clk := newWatcher(t, &fakeJobs{})

	due, err := w.PromptDue(clk.now())
	require.NoError(t, err)
	assert.True(t, due)

	require.NoError(t, w.Dismiss(clk.now()))
	due, _ = w.PromptDue(clk.now().Add(6 * 24 * time.Hour))
	assert.False(t, due, "suppressed within seven days")
	due, _ = w.PromptDue(clk.now().Add(7*24*time.Hour + time.Minute))
	assert.True(t, due)

	grant(t, kv)
	due, _ = w.PromptDue(clk.now().Add(30 * 24 * time.Hour))
	assert.False(t, due, "not offered once decided")
}

type fakeSubscriber struct {
	subscribed   []string
	unsubscribed []string
	err          error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, sub db.PushSubscription) (string, error) {
	f.subscribed = append(f.subscribed, sub.Endpoint)
	return "sub-1", f.err
}

func (f *fakeSubscriber) Unsubscribe(_ context.Context, endpoint string) error {
	f.unsubscribed = append(f.unsubscribed, endpoint)
	return f.err
}

func TestEnableDisable(t *testing.T) {
	kv := localstate.NewMemory()
	rec := &recorder{}
	subs := &fakeSubscriber{}
	cfg := DefaultConfig()
	cfg.Endpoint = "telegram://chat/42"
	w := New(cfg, &fakeJobs{}, kv, rec, WithSubscriber(subs))

	require.NoError(t, w.Enable(context.Background()))
	active, err := w.Active()
	require.NoError(t, err)
	assert.True(t, active)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "welcome", rec.sent[0].Tag)
	assert.Equal(t, []string{"telegram://chat/42"}, subs.subscribed)

	subs.err = errors.New("offline")
	require.NoError(t, w.Disable(context.Background()), "unsubscribe failures are only logged")
	active, _ = w.Active()
	assert.False(t, active)
	assert.Equal(t, "false", get(t, kv, localstate.KeyNotifications))
	assert.Equal(t, []string{"telegram://chat/42"}, subs.unsubscribed)

	p, _ := w.Permission()
	assert.Equal(t, PermissionGranted, p)
}

func TestDeny(t *testing.T) {
	w, _, _, clk := newWatcher(t, &fakeJobs{})
	require.NoError(t, w.Deny())
	due, err := w.PromptDue(clk.now())
	require.NoError(t, err)
	assert.False(t, due)
}

func TestStatus(t *testing.T) {
	src := &fakeJobs{jobs: jobsWithIDs(4)}
	w, kv, _, clk := newWatcher(t, src)
	grant(t, kv)
	_, err := w.Check(context.Background())
	require.NoError(t, err)

	st, err := w.Status()
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, st.Permission)
	assert.True(t, st.Active)
	assert.Equal(t, int64(4), st.LastJobID)
	assert.True(t, st.LastCheck.Equal(clk.now()))
	assert.True(t, st.Dismissed.IsZero())
}

func TestNewJobsMessage(t *testing.T) {
	n := NewJobsMessage(jobsWithIDs(3))
	assert.Equal(t, "New Government Job Available!", n.Title)
	assert.Equal(t, "Job 3", n.Body)

	n = NewJobsMessage(jobsWithIDs(9, 8, 7))
	assert.Equal(t, "3 New Government Jobs Available!", n.Title)
	assert.Equal(t, "Latest: Job 9 and 2 more", n.Body)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("down")}
	err := Multi{a, b}.Notify(context.Background(), Notification{Title: "x"})
	assert.Error(t, err)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "http://localhost:3000")
	require.NoError(t, c.Notify(context.Background(), NewJobsMessage(jobsWithIDs(2, 1))))
	assert.Contains(t, buf.String(), "2 New Government Jobs Available!")
	assert.Contains(t, buf.String(), "Latest: Job 2 and 1 more")
	assert.Contains(t, buf.String(), "http://localhost:3000/jobs")
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegram(t *testing.T) {
	s := &fakeSender{}
	tg := &Telegram{api: s, chatID: 42, baseURL: "https://jobs.example"}

	err := tg.Notify(context.Background(), Notification{Title: "1 & <2>", Body: "Clerk", URL: "/jobs"})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	assert.Equal(t, int64(42), s.sent[0].ChatID)
	assert.Equal(t, "🔔 <b>1 &amp; &lt;2&gt;</b>\nClerk", s.sent[0].Text)
	assert.Equal(t, tgbotapi.ModeHTML, s.sent[0].ParseMode)
	assert.NotNil(t, s.sent[0].ReplyMarkup)
	assert.Equal(t, "telegram://chat/42", tg.Endpoint())
}
