package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
}

func TestCache_PutGet(t *testing.T) {
	c, err := New[string, int](10, 0)
	require.NoError(t, err)

	c.Put("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_OverwriteKeepsSize(t *testing.T) {
	c, err := New[string, int](2, 0)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("a", 2)
	assert.Equal(t, 1, c.Len())

	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[string, int](2, 0)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes least recently used
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_ExpiredEntryIsRemoved(t *testing.T) {
	clock := newClock()
	c, err := New[string, string](10, time.Hour, WithClock[string, string](clock.Now))
	require.NoError(t, err)

	c.Put("aapl", "profile")
	clock.Advance(59 * time.Minute)
	_, ok := c.Get("aapl")
	assert.True(t, ok, "entry within TTL should be served")

	clock.Advance(time.Minute)
	_, ok = c.Get("aapl")
	assert.False(t, ok, "entry at TTL must not be served")
	assert.Equal(t, 0, c.Len(), "expired entry should be removed on observation")

	// Not resurrected by a later read
	_, ok = c.Get("aapl")
	assert.False(t, ok)
}

func TestCache_PutRefreshesTimestamp(t *testing.T) {
	clock := newClock()
	c, err := New[string, int](10, time.Minute, WithClock[string, int](clock.Now))
	require.NoError(t, err)

	c.Put("k", 1)
	clock.Advance(50 * time.Second)
	c.Put("k", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	clock := newClock()
	c, err := New[string, int](10, 0, WithClock[string, int](clock.Now))
	require.NoError(t, err)

	c.Put("k", 1)
	clock.Advance(24 * 365 * time.Hour)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCache_RemoveAndPurge(t *testing.T) {
	c, err := New[int, int](10, 0)
	require.NoError(t, err)

	c.Put(1, 1)
	c.Put(2, 2)
	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidSize(t *testing.T) {
	_, err := New[string, int](0, 0)
	assert.Error(t, err)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, err := New[string, int](50, time.Minute)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%100)
				c.Put(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
