package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/localstate"
)

// Permission mirrors the three states of a notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func (w *Watcher) Permission() (Permission, error) {
	raw, ok, err := w.kv.Get(localstate.KeyPermission)
	if err != nil {
		return PermissionDefault, fmt.Errorf("read permission: %w", err)
	}
	if !ok {
		return PermissionDefault, nil
	}
	switch p := Permission(raw); p {
	case PermissionGranted, PermissionDenied:
		return p, nil
	}
	return PermissionDefault, nil
}

// Active reports whether checks should run: permission is granted and the
// user has not switched notifications off.
func (w *Watcher) Active() (bool, error) {
	p, err := w.Permission()
	if err != nil || p != PermissionGranted {
		return false, err
	}
	enabled, _, err := w.kv.Get(localstate.KeyNotifications)
	if err != nil {
		return false, fmt.Errorf("read notifications flag: %w", err)
	}
	return enabled != "false", nil
}

// PromptDue reports whether to offer enabling notifications: the user has not
// decided yet and has not dismissed the offer within DismissalPeriod.
func (w *Watcher) PromptDue(now time.Time) (bool, error) {
	p, err := w.Permission()
	if err != nil || p != PermissionDefault {
		return false, err
	}
	dismissed, ok, err := w.readInt(localstate.KeyPromptDismissed)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return now.Sub(time.UnixMilli(dismissed)) > w.cfg.DismissalPeriod, nil
}

// Dismiss records an explicit "maybe later". Letting the prompt time out
// does not count as a dismissal.
func (w *Watcher) Dismiss(now time.Time) error {
	if err := w.kv.Set(localstate.KeyPromptDismissed, fmt.Sprint(now.UnixMilli())); err != nil {
		return fmt.Errorf("save dismissal: %w", err)
	}
	return nil
}

// Enable grants permission, sends the welcome notification and registers a
// push subscription. Only local state failures are returned; delivery and
// registration problems are logged.
func (w *Watcher) Enable(ctx context.Context) error {
	if err := w.kv.Set(localstate.KeyPermission, string(PermissionGranted)); err != nil {
		return fmt.Errorf("save permission: %w", err)
	}
	if err := w.kv.Set(localstate.KeyNotifications, "true"); err != nil {
		return fmt.Errorf("save notifications flag: %w", err)
	}

	if err := w.notifier.Notify(ctx, WelcomeMessage()); err != nil {
		log.Printf("[notify] welcome notification failed: %v", err)
	}

	if w.subs != nil && w.cfg.Endpoint != "" {
		id, err := w.subs.Subscribe(ctx, db.PushSubscription{Endpoint: w.cfg.Endpoint})
		if err != nil {
			log.Printf("[notify] push subscription failed: %v", err)
		} else {
			log.Printf("[notify] push subscription %s registered", id)
		}
	}
	return nil
}

// Deny records that the user refused notifications. The prompt is not
// offered again.
func (w *Watcher) Deny() error {
	if err := w.kv.Set(localstate.KeyPermission, string(PermissionDenied)); err != nil {
		return fmt.Errorf("save permission: %w", err)
	}
	return nil
}

// Disable turns notifications off and drops the push subscription. The
// permission itself stays granted, so Enable can turn them back on.
func (w *Watcher) Disable(ctx context.Context) error {
	if err := w.kv.Set(localstate.KeyNotifications, "false"); err != nil {
		return fmt.Errorf("save notifications flag: %w", err)
	}
	if w.subs != nil && w.cfg.Endpoint != "" {
		if err := w.subs.Unsubscribe(ctx, w.cfg.Endpoint); err != nil {
			log.Printf("[notify] unsubscribe failed: %v", err)
		}
	}
	return nil
}

// Status is a snapshot of the watcher's persisted state.
type Status struct {
	Permission Permission
	Active     bool
	LastJobID  int64     // 0 when no watermark is set
	LastCheck  time.Time // zero when never checked
	Dismissed  time.Time // zero when the prompt was never dismissed
}

func (w *Watcher) Status() (Status, error) {
	var st Status
	var err error
	if st.Permission, err = w.Permission(); err != nil {
		return st, err
	}
	if st.Active, err = w.Active(); err != nil {
		return st, err
	}

	id, ok, err := w.readInt(localstate.KeyLastJobID)
	if err != nil {
		return st, err
	}
	if ok {
		st.LastJobID = id
	}
	if ms, ok, err := w.readInt(localstate.KeyLastJobCheck); err != nil {
		return st, err
	} else if ok {
		st.LastCheck = time.UnixMilli(ms)
	}
	if ms, ok, err := w.readInt(localstate.KeyPromptDismissed); err != nil {
		return st, err
	} else if ok {
		st.Dismissed = time.UnixMilli(ms)
	}
	return st, nil
}
