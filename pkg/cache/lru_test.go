package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLRU_PutGet(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := cache.NewLRU(2, cache.WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a") // b is now the oldest
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	evictions := 0
	c := cache.NewLRU(2, cache.WithEvictCallback(func(string, int) { evictions++ }))
	c.Put("a", 1)

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Zero(t, c.Len())
	assert.Zero(t, evictions)
}

func TestLRU_TTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.NewLRU(10,
		cache.WithTTL[string, int](time.Minute),
		cache.WithClock[string, int](clock.Now),
	)

	c.Put("a", 1)
	clock.Advance(30 * time.Second)
	c.Put("b", 2)

	_, ok := c.Get("a")
	assert.True(t, ok)

	clock.Advance(30 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "a expired exactly at its deadline")
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Put("b", 3)
	clock.Advance(59 * time.Second)
	v, ok := c.Get("b")
	require.True(t, ok, "Put resets expiry")
	assert.Equal(t, 3, v)
}

func TestLRU_Purge(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0)}
	c := cache.NewLRU(10,
		cache.WithTTL[int, string](time.Second),
		cache.WithClock[int, string](clock.Now),
	)
	for i := range 4 {
		c.Put(i, fmt.Sprint(i))
	}
	clock.Advance(time.Second)
	c.Put(99, "fresh")

	assert.Equal(t, 4, c.Purge())
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := cache.NewLRU(3, cache.WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	assert.Zero(t, c.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, evicted)
}

func TestLRU_PanicsOnZeroCapacity(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { cache.NewLRU[string, int](0) })
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[int, int](50)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				c.Put(g*1000+i, i)
				_, _ = c.Get(g*1000 + i/2)
				if i%7 == 0 {
					c.Remove(g*1000 + i)
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
