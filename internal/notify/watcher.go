// Package notify watches the listing for newly posted jobs and alerts the
// user about them.
//
// All watcher state lives in the local key/value store: the id watermark,
// the time of the last completed check, and the permission flags. Losing the
// store resets the watcher to first-run behaviour.
package notify

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/localstate"
	"github.com/user/jobboard/internal/query"
)

// State is where the watcher is in its check cycle.
type State int

const (
	Idle State = iota
	Checking
	Notifying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	case Notifying:
		return "notifying"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Config struct {
	Interval        time.Duration
	Cooldown        time.Duration
	InitialDelay    time.Duration
	BatchSize       int
	PromptTimeout   time.Duration
	DismissalPeriod time.Duration

	// Endpoint identifies this client to the push subscription API.
	// Empty skips registration.
	Endpoint string
}

func DefaultConfig() Config {
	return Config{
		Interval:        30 * time.Minute,
		Cooldown:        10 * time.Minute,
		InitialDelay:    5 * time.Second,
		BatchSize:       5,
		PromptTimeout:   10 * time.Second,
		DismissalPeriod: 7 * 24 * time.Hour,
	}
}

// JobSource returns the newest jobs first.
type JobSource interface {
	Jobs(ctx context.Context, f query.Filter) ([]db.Job, error)
}

// Subscriber registers push subscriptions with the server.
type Subscriber interface {
	Subscribe(ctx context.Context, sub db.PushSubscription) (string, error)
	Unsubscribe(ctx context.Context, endpoint string) error
}

type Option func(*Watcher)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

func WithSubscriber(s Subscriber) Option {
	return func(w *Watcher) { w.subs = s }
}

type Watcher struct {
	cfg      Config
	jobs     JobSource
	kv       localstate.Store
	notifier Notifier
	subs     Subscriber
	now      func() time.Time

	mu    sync.Mutex // serializes checks
	smu   sync.Mutex
	state State
}

func New(cfg Config, jobs JobSource, kv localstate.Store, n Notifier, opts ...Option) *Watcher {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.DismissalPeriod <= 0 {
		cfg.DismissalPeriod = def.DismissalPeriod
	}

	w := &Watcher{
		cfg:      cfg,
		jobs:     jobs,
		kv:       kv,
		notifier: n,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) Config() Config {
	return w.cfg
}

func (w *Watcher) State() State {
	w.smu.Lock()
	defer w.smu.Unlock()
	return w.state
}

func (w *Watcher) setState(s State) {
	w.smu.Lock()
	w.state = s
	w.smu.Unlock()
}

// CheckResult describes one call to Check.
type CheckResult struct {
	// Ran is false when the watcher was inactive or cooling down.
	Ran     bool
	NewJobs []db.Job
}

// Check performs one Idle → Checking → (Notifying | Idle) cycle.
//
// The watermark is persisted before the notification is delivered, so a
// crash between the two loses an alert rather than repeating one. A failed
// fetch leaves the watermark and the last-check time untouched.
func (w *Watcher) Check(ctx context.Context) (CheckResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	active, err := w.Active()
	if err != nil || !active {
		return CheckResult{}, err
	}

	now := w.now()
	if last, ok, err := w.readInt(localstate.KeyLastJobCheck); err != nil {
		return CheckResult{}, err
	} else if ok && now.Sub(time.UnixMilli(last)) < w.cfg.Cooldown {
		return CheckResult{}, nil
	}

	w.setState(Checking)
	defer w.setState(Idle)

	jobs, err := w.jobs.Jobs(ctx, query.Filter{Limit: w.cfg.BatchSize})
	if err != nil {
		return CheckResult{}, fmt.Errorf("fetch latest jobs: %w", err)
	}

	watermark, hasWatermark, err := w.readInt(localstate.KeyLastJobID)
	if err != nil {
		return CheckResult{}, err
	}

	// With no watermark everything is treated as already seen.
	var delta []db.Job
	var maxID int64
	for _, j := range jobs {
		if hasWatermark && j.ID > watermark {
			delta = append(delta, j)
		}
		if j.ID > maxID {
			maxID = j.ID
		}
	}

	if len(jobs) > 0 && (!hasWatermark || maxID > watermark) {
		if err := w.kv.Set(localstate.KeyLastJobID, strconv.FormatInt(maxID, 10)); err != nil {
			return CheckResult{}, fmt.Errorf("save watermark: %w", err)
		}
	}
	if err := w.kv.Set(localstate.KeyLastJobCheck, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return CheckResult{}, fmt.Errorf("save last check: %w", err)
	}

	res := CheckResult{Ran: true, NewJobs: delta}
	if len(delta) == 0 {
		return res, nil
	}

	w.setState(Notifying)
	if err := w.notifier.Notify(ctx, NewJobsMessage(delta)); err != nil {
		return res, fmt.Errorf("deliver notification: %w", err)
	}
	return res, nil
}

// Run checks after InitialDelay and then every Interval until ctx ends.
// Failed checks are logged and retried on the next tick.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.cfg.InitialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}
	w.runOnce(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	res, err := w.Check(ctx)
	if err != nil {
		log.Printf("[watch] check failed: %v", err)
		return
	}
	if len(res.NewJobs) > 0 {
		log.Printf("[watch] %d new job(s)", len(res.NewJobs))
	}
}

func (w *Watcher) readInt(key string) (int64, bool, error) {
	raw, ok, err := w.kv.Get(key)
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// unreadable values count as missing
		return 0, false, nil
	}
	return n, true, nil
}
