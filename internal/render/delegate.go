package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Action names carried in data-action attributes.
const (
	ActionBookmark = "bookmark"
	ActionShare    = "share"
)

// ErrUnbound is returned by Dispatch for an action with no handler.
var ErrUnbound = errors.New("no handler bound")

// Event is one user action on a rendered card.
type Event struct {
	Action string
	JobID  int64
}

type Handler func(ctx context.Context, ev Event) error

// Delegator routes events to one handler per action. Handlers are looked up
// at dispatch time, so re-rendering a listing never needs rebinding.
type Delegator struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewDelegator() *Delegator {
	return &Delegator{handlers: make(map[string]Handler)}
}

// Bind registers h for action. Each action can be bound once.
func (d *Delegator) Bind(action string, h Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[action]; ok {
		return fmt.Errorf("action %q already bound", action)
	}
	d.handlers[action] = h
	return nil
}

func (d *Delegator) Dispatch(ctx context.Context, ev Event) error {
	d.mu.RLock()
	h, ok := d.handlers[ev.Action]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", ev.Action, ErrUnbound)
	}
	return h(ctx, ev)
}

// ShareURL is the public page of a job.
func ShareURL(base string, id int64) string {
	return strings.TrimRight(base, "/") + "/jobs/" + strconv.FormatInt(id, 10)
}

var writeClipboard = clipboard.WriteAll

// Share copies the job's page URL to the system clipboard and returns it.
func Share(base string, id int64) (string, error) {
	url := ShareURL(base, id)
	if err := writeClipboard(url); err != nil {
		return url, fmt.Errorf("copy to clipboard: %w", err)
	}
	return url, nil
}
