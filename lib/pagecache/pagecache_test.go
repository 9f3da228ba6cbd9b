package pagecache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cache := New(16, time.Minute)

	_, hit := cache.Get("М8О-102БВ-24", 10)
	require.False(t, hit)

	cache.Put("М8О-102БВ-24", 10, []byte("<html>week 10</html>"))

	page, hit := cache.Get("М8О-102БВ-24", 10)
	require.True(t, hit)
	require.Equal(t, []byte("<html>week 10</html>"), page)

	// same group, different week is a different key
	_, hit = cache.Get("М8О-102БВ-24", 11)
	require.False(t, hit)
}

func TestExpiry(t *testing.T) {
	cache := New(16, time.Millisecond*50)

	cache.Put("group", 1, []byte("stale soon"))
	_, hit := cache.Get("group", 1)
	require.True(t, hit)

	time.Sleep(time.Millisecond * 80)

	_, hit = cache.Get("group", 1)
	require.False(t, hit)
}

func TestCapacityBound(t *testing.T) {
	cache := New(4, time.Minute)

	for week := 1; week <= 8; week++ {
		cache.Put("group", week, []byte(fmt.Sprint(week)))
	}
	require.Equal(t, 4, cache.Len())

	// the newest entries survive
	page, hit := cache.Get("group", 8)
	require.True(t, hit)
	require.Equal(t, []byte("8"), page)
	_, hit = cache.Get("group", 1)
	require.False(t, hit)
}

func TestConcurrentAccess(t *testing.T) {
	cache := New(64, time.Minute)

	wg := sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(week int) {
			defer wg.Done()
			cache.Put("group", week, []byte(fmt.Sprint(week)))
			cache.Get("group", week)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 32, cache.Len())
}
