// Package bookmark keeps the client's set of bookmarked job ids.
//
// Bookmarks are purely local: a job that disappears from the server stays
// bookmarked until the user toggles it off.
package bookmark

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/user/jobboard/internal/localstate"
)

// Store is the bookmark set backed by a localstate.Store.
type Store struct {
	mu  sync.Mutex
	kv  localstate.Store
	ids mapset.Set[int64]
}

// Load reads the persisted set. A missing or unreadable value is an empty set.
func Load(kv localstate.Store) (*Store, error) {
	s := &Store{kv: kv}
	ids, err := s.read()
	if err != nil {
		return nil, err
	}
	s.ids = ids
	return s, nil
}

func (s *Store) read() (mapset.Set[int64], error) {
	raw, ok, err := s.kv.Get(localstate.KeyBookmarks)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	ids := mapset.NewThreadUnsafeSet[int64]()
	if !ok || raw == "" {
		return ids, nil
	}

	var list []int64
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		// corrupt state resets to no bookmarks
		return ids, nil
	}
	ids.Append(list...)
	return ids, nil
}

// Toggle flips the membership of id and returns the new state.
//
// The new set is written first and only adopted once the write succeeds, so a
// failed write leaves both the persisted and in-memory state unchanged.
func (s *Store) Toggle(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The CLI and the TUI share the same state file.
	current, err := s.read()
	if err != nil {
		return s.ids.Contains(id), err
	}

	next := current.Clone()
	if next.Contains(id) {
		next.Remove(id)
	} else {
		next.Add(id)
	}

	data, err := json.Marshal(sorted(next))
	if err != nil {
		return current.Contains(id), fmt.Errorf("encode bookmarks: %w", err)
	}
	if err := s.kv.Set(localstate.KeyBookmarks, string(data)); err != nil {
		return current.Contains(id), fmt.Errorf("save bookmarks: %w", err)
	}

	s.ids = next
	return next.Contains(id), nil
}

func (s *Store) IsBookmarked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Contains(id)
}

// All returns the bookmarked ids in ascending order.
func (s *Store) All() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.ids)
}

// Snapshot returns a read-only copy for rendering.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ids: s.ids.Clone()}
}

// Snapshot is a point-in-time view of the bookmark set.
type Snapshot struct {
	ids mapset.Set[int64]
}

// NewSnapshot builds a snapshot from explicit ids.
func NewSnapshot(ids ...int64) Snapshot {
	return Snapshot{ids: mapset.NewThreadUnsafeSet[int64](ids...)}
}

func (s Snapshot) IsBookmarked(id int64) bool {
	return s.ids != nil && s.ids.Contains(id)
}

func (s Snapshot) Len() int {
	if s.ids == nil {
		return 0
	}
	return s.ids.Cardinality()
}

func sorted(set mapset.Set[int64]) []int64 {
	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
