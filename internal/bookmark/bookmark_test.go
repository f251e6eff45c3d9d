package bookmark

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/jobboard/internal/localstate"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	for _, id := range []int64{0, 1, 42, 1 << 40} {
		kv := localstate.NewMemory()
		s, err := Load(kv)
		require.NoError(t, err)

		before := s.IsBookmarked(id)

		on, err := s.Toggle(id)
		require.NoError(t, err)
		assert.Equal(t, !before, on)

		off, err := s.Toggle(id)
		require.NoError(t, err)
		assert.Equal(t, before, off)
		assert.Equal(t, before, s.IsBookmarked(id))
	}
}

func TestTogglePersists(t *testing.T) {
	kv := localstate.NewMemory()
	s, err := Load(kv)
	require.NoError(t, err)

	_, err = s.Toggle(5)
	require.NoError(t, err)
	_, err = s.Toggle(2)
	require.NoError(t, err)

	raw, ok, _ := kv.Get(localstate.KeyBookmarks)
	require.True(t, ok)
	assert.JSONEq(t, "[2,5]", raw)

	reloaded, err := Load(kv)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, reloaded.All())
}

func TestToggleFailedWriteLeavesStateUnchanged(t *testing.T) {
	kv := localstate.NewMemory()
	s, err := Load(kv)
	require.NoError(t, err)
	_, err = s.Toggle(1)
	require.NoError(t, err)

	kv.FailWrites = errors.New("quota exceeded")

	state, err := s.Toggle(2)
	assert.Error(t, err)
	assert.False(t, state)
	assert.False(t, s.IsBookmarked(2))

	state, err = s.Toggle(1)
	assert.Error(t, err)
	assert.True(t, state)
	assert.True(t, s.IsBookmarked(1))

	raw, _, _ := kv.Get(localstate.KeyBookmarks)
	assert.JSONEq(t, "[1]", raw)
}

func TestLoadToleratesCorruptState(t *testing.T) {
	kv := localstate.NewMemory()
	require.NoError(t, kv.Set(localstate.KeyBookmarks, "not json"))

	s, err := Load(kv)
	require.NoError(t, err)
	assert.Empty(t, s.All())

	on, err := s.Toggle(3)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestToggleSeesOtherWriters(t *testing.T) {
	kv := localstate.NewMemory()
	a, err := Load(kv)
	require.NoError(t, err)
	b, err := Load(kv)
	require.NoError(t, err)

	_, err = a.Toggle(1)
	require.NoError(t, err)
	_, err = b.Toggle(2)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, b.All())
}

func TestSnapshot(t *testing.T) {
	kv := localstate.NewMemory()
	s, err := Load(kv)
	require.NoError(t, err)
	_, err = s.Toggle(9)
	require.NoError(t, err)

	snap := s.Snapshot()
	_, err = s.Toggle(9)
	require.NoError(t, err)

	// the snapshot does not follow later toggles
	assert.True(t, snap.IsBookmarked(9))
	assert.False(t, s.IsBookmarked(9))
	assert.Equal(t, 1, snap.Len())

	var zero Snapshot
	assert.False(t, zero.IsBookmarked(9))
	assert.Equal(t, 0, zero.Len())
	assert.True(t, NewSnapshot(4, 5).IsBookmarked(5))
}
