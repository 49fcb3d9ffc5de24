package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	m, err := NewMemory(Options{NumCounters: 1000, MaxCost: 100})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestMemory_SetGetDelete(t *testing.T) {
	m := newTestMemory(t)

	_, ok := m.Get("missing")
	assert.False(t, ok)

	require.True(t, m.Set("counter", 3, time.Minute))
	v, ok := m.Get("counter")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	m.Delete("counter")
	_, ok = m.Get("counter")
	assert.False(t, ok)
}

func TestMemory_Expires(t *testing.T) {
	m := newTestMemory(t)

	require.True(t, m.Set("short", "v", 50*time.Millisecond))
	_, ok := m.Get("short")
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)
	_, ok = m.Get("short")
	assert.False(t, ok)
}

func TestMemory_ImplementsStore(t *testing.T) {
	var _ Store = newTestMemory(t)
}
