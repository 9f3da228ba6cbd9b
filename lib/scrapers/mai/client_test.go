package mai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"maischedule-backend/lib/pagecache"

	"github.com/stretchr/testify/require"
)

func TestFetchPageCacheFirst(t *testing.T) {
	// requests are recorded and asserted after the fetches; a failed
	// assertion inside the handler would kill the response mid-flight
	var mu sync.Mutex
	var requests []*http.Request
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Clone(context.Background()))
		mu.Unlock()
		fmt.Fprintf(w, "<html>week %s</html>", r.URL.Query().Get("week"))
	}))
	defer origin.Close()

	client := NewClient(ClientOptions{
		BaseUrl: origin.URL,
		Cache:   pagecache.New(16, time.Minute),
	})
	ctx := context.Background()

	page, err := client.FetchPage(ctx, "М8О-102БВ-24", 10)
	require.NoError(t, err)
	require.Equal(t, []byte("<html>week 10</html>"), page)
	require.Len(t, requests, 1)

	// second fetch within the TTL never reaches the origin
	page, err = client.FetchPage(ctx, "М8О-102БВ-24", 10)
	require.NoError(t, err)
	require.Equal(t, []byte("<html>week 10</html>"), page)
	require.Len(t, requests, 1)

	// a different week is a different cache key
	page, err = client.FetchPage(ctx, "М8О-102БВ-24", 11)
	require.NoError(t, err)
	require.Equal(t, []byte("<html>week 11</html>"), page)
	require.Len(t, requests, 2)

	require.Equal(t, "ScheduleParserBot/1.0", requests[0].Header.Get("User-Agent"))
	require.Equal(t, "М8О-102БВ-24", requests[0].URL.Query().Get("group"))
	require.Equal(t, "10", requests[0].URL.Query().Get("week"))
	require.Equal(t, "11", requests[1].URL.Query().Get("week"))
}

func TestFetchPageStatusError(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer origin.Close()

	client := NewClient(ClientOptions{BaseUrl: origin.URL})

	_, err := client.FetchPage(context.Background(), "М8О-102БВ-24", 10)
	require.Error(t, err)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, http.StatusServiceUnavailable, ferr.StatusCode)
	require.False(t, ferr.Network())
}

func TestFetchPageNetworkError(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin.Close()

	client := NewClient(ClientOptions{
		BaseUrl: origin.URL,
		Timeout: time.Second,
	})

	_, err := client.FetchPage(context.Background(), "М8О-102БВ-24", 10)
	require.Error(t, err)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.True(t, ferr.Network())
}

func TestFetchPageFailureNotCached(t *testing.T) {
	var hits atomic.Int64
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer origin.Close()

	client := NewClient(ClientOptions{
		BaseUrl: origin.URL,
		Cache:   pagecache.New(16, time.Minute),
	})
	ctx := context.Background()

	_, err := client.FetchPage(ctx, "М8О-102БВ-24", 10)
	require.Error(t, err)

	page, err := client.FetchPage(ctx, "М8О-102БВ-24", 10)
	require.NoError(t, err)
	require.Equal(t, []byte("<html>ok</html>"), page)
	require.EqualValues(t, 2, hits.Load())
}
