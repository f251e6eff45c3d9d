// Package localstate holds the client's per-user key/value state: bookmarks,
// the notification watermark and prompt/permission flags. None of it lives on
// the server, and losing it resets the client to first-run behaviour.
package localstate

import (
	"sort"
	"sync"
)

// Keys used by the client.
const (
	KeyBookmarks       = "bookmarkedJobs"
	KeyLastJobID       = "lastJobId"
	KeyLastJobCheck    = "lastJobCheck"
	KeyPromptDismissed = "notificationPromptDismissed"
	KeyNotifications   = "notificationsEnabled"
	KeyPermission      = "notificationPermission"
)

// Store is a flat string key/value store.
type Store interface {
	// Get returns the value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store, used in tests and as a throwaway fallback.
type Memory struct {
	mu     sync.Mutex
	values map[string]string

	// FailWrites makes Set and Delete fail with this error when non-nil.
	FailWrites error
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	delete(m.values, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
