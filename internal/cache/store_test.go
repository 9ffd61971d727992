package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suilp-api/internal/config"
)

func TestStoreSetGet(t *testing.T) {
	store := NewStore()

	store.Set("k", 42, time.Minute)
	value, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	store.Set("k", "v", 30*time.Second)

	value, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", value)

	// Just inside the window.
	now = now.Add(30 * time.Second)
	_, ok = store.Get("k")
	assert.True(t, ok)

	// Past expiry the entry reads as absent, never stale.
	now = now.Add(time.Millisecond)
	_, ok = store.Get("k")
	assert.False(t, ok)

	// Re-setting overwrites the dead entry in place.
	store.Set("k", "v2", time.Minute)
	value, ok = store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", value)
	assert.Equal(t, 1, store.Len())
}

func TestStoreNonPositiveTTL(t *testing.T) {
	store := NewStore()
	store.Set("k", "v", 0)
	_, ok := store.Get("k")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStoreLastWriteWins(t *testing.T) {
	store := NewStore()
	store.Set("k", 1, time.Minute)
	store.Set("k", 2, time.Minute)
	value, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Set(fmt.Sprintf("key-%d", n%4), n, time.Minute)
		}(i)
		go func(n int) {
			defer wg.Done()
			store.Get(fmt.Sprintf("key-%d", n%4))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		_, ok := store.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok)
	}
}

func TestGetTyped(t *testing.T) {
	store := NewStore()
	store.Set("ints", []int{1, 2, 3}, time.Minute)

	values, ok := GetTyped[[]int](store, "ints")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, values)

	// Wrong type reads as a miss rather than panicking.
	_, ok = GetTyped[string](store, "ints")
	assert.False(t, ok)
}

func TestNewTTLSet(t *testing.T) {
	ttl := NewTTLSet(config.CacheTTL{Short: 10, Medium: 60, Long: 300})
	assert.Equal(t, 10*time.Second, ttl.Duration(TTLShort))
	assert.Equal(t, time.Minute, ttl.Duration(TTLMedium))
	assert.Equal(t, 5*time.Minute, ttl.Duration(TTLLong))

	assert.Equal(t, time.Minute, PoolConfigTTL(ttl))
	assert.Equal(t, time.Hour, CoinMetaTTL(ttl))
	assert.Equal(t, 5*time.Minute, KlineTTL(ttl))
	assert.Equal(t, time.Minute, PoolsListingTTL(ttl))

	// Zero values fall back to defaults.
	defaults := NewTTLSet(config.CacheTTL{})
	assert.Equal(t, 10*time.Second, defaults.Short)
	assert.Equal(t, time.Minute, defaults.Medium)
	assert.Equal(t, 5*time.Minute, defaults.Long)
}
