package sku

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBuildKeyTracksVersion(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	first, err := cache.BuildKey(ctx, "search", "asp")
	require.NoError(t, err)
	assert.Equal(t, "skus:search:asp:v1", first)

	require.NoError(t, cache.Bump(ctx))
	second, err := cache.BuildKey(ctx, "search", "asp")
	require.NoError(t, err)
	assert.Equal(t, "skus:search:asp:v2", second)
}

func TestCacheFetchJSONStoresWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return Page{Total: 3}, nil
	}
	var page Page
	require.NoError(t, cache.FetchJSON(ctx, "k", &page, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &page, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestCacheFetchJSONPropagatesLoaderError(t *testing.T) {
	cache, mr := newTestCache(t)
	boom := errors.New("boom")

	var page Page
	err := cache.FetchJSON(context.Background(), "k", &page, func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return Page{Total: 1}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var page Page
			assert.NoError(t, cache.FetchJSON(ctx, "hot", &page, loader))
			assert.Equal(t, 1, page.Total)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestNilCacheCallsLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "duplicates")
	require.NoError(t, err)
	assert.Equal(t, "skus:duplicates", key)
	require.NoError(t, cache.Bump(ctx))

	var groups []DuplicateGroup
	require.NoError(t, cache.FetchJSON(ctx, key, &groups, func(context.Context) (any, error) {
		return []DuplicateGroup{{Name: "x"}}, nil
	}))
	assert.Len(t, groups, 1)
}

func TestCacheBuildKeyEscapesSeparators(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	a, err := cache.BuildKey(ctx, "search", "123", ":b")
	require.NoError(t, err)
	b, err := cache.BuildKey(ctx, "search", "123:", "b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
