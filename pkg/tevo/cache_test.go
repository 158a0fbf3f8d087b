package tevo_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := tevo.NewMemoryCache(10)
	ctx := context.Background()

	entry := &tevo.CacheEntry{
		Data:      []byte("payload"),
		ExpiresAt: time.Now().Add(time.Hour),
		ETag:      "abc123",
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, "abc123", retrieved.ETag)
	assert.True(t, cache.Has(ctx, "key1"))

	_, err = cache.Get(ctx, "missing")
	require.ErrorIs(t, err, tevo.ErrKeyNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	cache := tevo.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "stale", &tevo.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Second)}))
	require.NoError(t, cache.Set(ctx, "fresh", &tevo.CacheEntry{Data: []byte("y"), ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Equal(t, 2, cache.Len())

	cache.Cleanup()
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Set(ctx, "stale", &tevo.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := cache.Get(ctx, "stale")
	require.ErrorIs(t, err, tevo.ErrEntryExpired)
	assert.False(t, cache.Has(ctx, "stale"))
}

func TestMemoryCache_EvictsSoonestExpiry(t *testing.T) {
	t.Parallel()

	cache := tevo.NewMemoryCache(2)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, cache.Set(ctx, "short", &tevo.CacheEntry{ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, cache.Set(ctx, "long", &tevo.CacheEntry{ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, cache.Set(ctx, "new", &tevo.CacheEntry{ExpiresAt: now.Add(30 * time.Minute)}))

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Has(ctx, "short"))
	assert.True(t, cache.Has(ctx, "long"))
	assert.True(t, cache.Has(ctx, "new"))

	require.NoError(t, cache.Delete(ctx, "long"))
	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestCacheManager_GetCacheKey(t *testing.T) {
	t.Parallel()

	manager := tevo.NewCacheManager(tevo.NewMemoryCache(10), &tevo.CacheOptions{KeyPrefix: "v9:"})

	assert.Equal(t, "v9:GET:/events", manager.GetCacheKey("GET", "/events", nil))
	assert.Equal(t,
		"v9:GET:/events:ids=2,1&page=2",
		manager.GetCacheKey("GET", "/events", tevo.Params{"page": 2, "ids": []int{2, 1}}),
	)

	// parameter names are sorted
	assert.Equal(t,
		manager.GetCacheKey("GET", "/events", tevo.Params{"a": 1, "b": 2}),
		manager.GetCacheKey("GET", "/events", tevo.Params{"b": 2, "a": 1}),
	)

	// the values of a repeated parameter are not
	assert.NotEqual(t,
		manager.GetCacheKey("GET", "/events", tevo.Params{"ids": []int{1, 2}}),
		manager.GetCacheKey("GET", "/events", tevo.Params{"ids": []int{2, 1}}),
	)
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	t.Parallel()

	cache := tevo.NewMemoryCache(10)
	ctx := context.Background()

	for _, key := range []string{"GET:/clients/5", "GET:/clients/5:page=2", "GET:/clients/50", "GET:/venues"} {
		require.NoError(t, cache.Set(ctx, key, &tevo.CacheEntry{Data: []byte(key)}))
	}

	require.NoError(t, cache.DeletePrefix(ctx, "GET:/clients/5:"))
	assert.False(t, cache.Has(ctx, "GET:/clients/5:page=2"))
	assert.True(t, cache.Has(ctx, "GET:/clients/5"))

	require.NoError(t, cache.DeletePrefix(ctx, "GET:/clients"))
	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Has(ctx, "GET:/venues"))
}

func TestCacheManager_InvalidatePath(t *testing.T) {
	t.Parallel()

	cache := tevo.NewMemoryCache(20)
	manager := tevo.NewCacheManager(cache, &tevo.CacheOptions{KeyPrefix: "p:", DefaultTTL: time.Minute})
	ctx := context.Background()

	stale := []string{
		"p:GET:/clients",
		"p:GET:/clients:page=2",
		"p:GET:/clients/5",
		"p:GET:/clients/5:include=tags",
		"p:GET:/clients/5/addresses",
		"p:GET:/clients/5/addresses/9",
	}
	fresh := []string{
		"p:GET:/clients/50",
		"p:GET:/clients/6/addresses",
		"p:GET:/venues",
		"other:GET:/clients/5",
	}

	for _, key := range append(append([]string{}, stale...), fresh...) {
		require.NoError(t, cache.Set(ctx, key, &tevo.CacheEntry{Data: []byte(key)}))
	}

	require.NoError(t, manager.InvalidatePath(ctx, "/clients/5?force=true"))

	for _, key := range stale {
		assert.False(t, cache.Has(ctx, key), key)
	}

	for _, key := range fresh {
		assert.True(t, cache.Has(ctx, key), key)
	}
}

func TestCacheManager_Stats(t *testing.T) {
	t.Parallel()

	manager := tevo.NewCacheManager(tevo.NewMemoryCache(10), nil)
	ctx := context.Background()

	_, err := manager.Get(ctx, "k")
	require.Error(t, err)

	require.NoError(t, manager.Set(ctx, "k", []byte("v"), 0))

	data, err := manager.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 0.5, stats.GetHitRate(), 0.001)
	assert.InDelta(t, 0.0, (&tevo.CacheStats{}).GetHitRate(), 0)
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := tevo.NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", &tevo.CacheEntry{}))

	_, err := cache.Get(ctx, "k")
	require.ErrorIs(t, err, tevo.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "k"))
}

func TestCacheChain_Backfills(t *testing.T) {
	t.Parallel()

	l1 := tevo.NewMemoryCache(10)
	l2 := tevo.NewMemoryCache(10)
	chain := tevo.NewCacheChain(l1, l2)
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", &tevo.CacheEntry{Data: []byte("v"), ExpiresAt: time.Now().Add(time.Hour)}))
	assert.False(t, l1.Has(ctx, "k"))

	entry, err := chain.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), entry.Data)
	assert.True(t, l1.Has(ctx, "k"))

	require.NoError(t, chain.Delete(ctx, "k"))
	assert.False(t, chain.Has(ctx, "k"))

	_, err = chain.Get(ctx, "k")
	require.ErrorIs(t, err, tevo.ErrKeyNotFoundInAnyCache)
}

func TestCacheFactory(t *testing.T) {
	t.Parallel()

	cacheType, err := tevo.ParseCacheType("")
	require.NoError(t, err)
	assert.Equal(t, tevo.CacheTypeNone, cacheType)

	_, err = tevo.ParseCacheType("memcached")
	require.ErrorIs(t, err, tevo.ErrUnsupportedCacheType)

	cache, err := tevo.NewCacheFromConfig(nil)
	require.NoError(t, err)
	assert.IsType(t, &tevo.MemoryCache{}, cache)

	cache, err = tevo.NewCacheBuilder().WithType(tevo.CacheTypeNone).Build()
	require.NoError(t, err)
	assert.IsType(t, &tevo.NoOpCache{}, cache)

	_, err = tevo.NewCacheBuilder().WithType(tevo.CacheTypeRedis).Build()
	require.ErrorIs(t, err, tevo.ErrRedisConfigRequired)

	_, err = tevo.NewCacheBuilder().WithType(tevo.CacheTypeNATS).Build()
	require.ErrorIs(t, err, tevo.ErrNATSConfigRequired)

	builder := tevo.NewCacheBuilder().WithMemoryConfig(5).WithTTL(time.Minute)
	assert.Equal(t, time.Minute, builder.Config().Options.DefaultTTL)
	assert.Equal(t, 5, builder.Config().Memory.MaxSize)
}

func newMiniredisCache(t *testing.T, memory *tevo.MemoryCacheConfig) (*miniredis.Miniredis, tevo.Cache) {
	t.Helper()

	server := miniredis.RunT(t)

	cache, err := tevo.NewCacheFromConfig(&tevo.CacheConfig{
		Type:   tevo.CacheTypeRedis,
		Memory: memory,
		Redis:  &tevo.RedisCacheConfig{Addr: server.Addr(), Prefix: "test:"},
	})
	require.NoError(t, err)

	return server, cache
}

func TestRedisCache(t *testing.T) {
	t.Parallel()

	server, cache := newMiniredisCache(t, nil)
	require.IsType(t, &tevo.RedisCache{}, cache)

	ctx := context.Background()

	entry := &tevo.CacheEntry{Data: []byte(`{"id":1}`), ExpiresAt: time.Now().Add(time.Minute), ETag: "W/1"}
	require.NoError(t, cache.Set(ctx, "GET:/events/1", entry))

	assert.True(t, server.Exists("test:GET:/events/1"))
	assert.InDelta(t, time.Minute.Seconds(), server.TTL("test:GET:/events/1").Seconds(), 2)

	got, err := cache.Get(ctx, "GET:/events/1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.Equal(t, "W/1", got.ETag)
	assert.True(t, cache.Has(ctx, "GET:/events/1"))

	_, err = cache.Get(ctx, "GET:/events/2")
	require.ErrorIs(t, err, tevo.ErrKeyNotFound)

	server.FastForward(2 * time.Minute)
	assert.False(t, cache.Has(ctx, "GET:/events/1"))

	require.NoError(t, cache.Set(ctx, "a", &tevo.CacheEntry{Data: []byte("1")}))
	require.NoError(t, cache.Set(ctx, "b", &tevo.CacheEntry{Data: []byte("2")}))
	require.NoError(t, server.Set("other:key", "kept"))

	require.NoError(t, cache.Set(ctx, "GET:/clients/5", &tevo.CacheEntry{Data: []byte("5")}))
	require.NoError(t, cache.Set(ctx, "GET:/clients/5/addresses", &tevo.CacheEntry{Data: []byte("5a")}))
	require.NoError(t, cache.Set(ctx, "GET:/clients/50", &tevo.CacheEntry{Data: []byte("50")}))

	require.NoError(t, cache.DeletePrefix(ctx, "GET:/clients/5/"))
	assert.False(t, server.Exists("test:GET:/clients/5/addresses"))
	assert.True(t, server.Exists("test:GET:/clients/5"))
	assert.True(t, server.Exists("test:GET:/clients/50"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, server.Exists("test:a"))
	assert.False(t, server.Exists("test:b"))
	assert.False(t, server.Exists("test:GET:/clients/50"))
	assert.True(t, server.Exists("other:key"))
}

func TestRedisCache_ExistingClient(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	cache, err := tevo.NewRedisCache(&tevo.RedisCacheConfig{Client: client})
	require.NoError(t, err)

	require.NoError(t, cache.Set(context.Background(), "k", &tevo.CacheEntry{Data: []byte("v")}))
	assert.True(t, server.Exists("tevo:cache:k"))
	require.NoError(t, cache.Close())

	// a client passed in is left open
	require.NoError(t, client.Ping(context.Background()).Err())

	_, err = tevo.NewRedisCache(&tevo.RedisCacheConfig{})
	require.ErrorIs(t, err, tevo.ErrRedisConfigRequired)
}

func TestRedisCache_WithMemoryTier(t *testing.T) {
	t.Parallel()

	_, cache := newMiniredisCache(t, &tevo.MemoryCacheConfig{MaxSize: 10})
	assert.IsType(t, &tevo.CacheChain{}, cache)
}

func TestConnection_CachesSuccessfulGets(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(func(call issuedCall) (*tevo.RawResponse, error) {
		switch call.Path {
		case "/venues/1":
			resp := jsonResponse(http.StatusOK, `{"id":1,"name":"Fenway Park"}`)
			resp.Headers.Set("ETag", `"v1"`)

			return resp, nil
		case "/venues/old":
			return jsonResponse(http.StatusFound, `{"url":"/venues/1"}`), nil
		default:
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	})

	conn := newTestConnection(t, transport, func(cfg *tevo.Config) {
		cfg.Cache = &tevo.CacheConfig{Type: tevo.CacheTypeMemory, Memory: &tevo.MemoryCacheConfig{MaxSize: 10}}
	})
	ctx := context.Background()

	first, err := conn.Venues().Show(ctx, 1)
	require.NoError(t, err)

	second, err := conn.Venues().Show(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Same(t, conn, second.Connection())
	assert.Len(t, transport.Calls(), 1)

	// errors are never cached
	_, err = conn.Venues().Show(ctx, 2)
	require.Error(t, err)
	_, err = conn.Venues().Show(ctx, 2)
	require.Error(t, err)
	assert.Len(t, transport.Calls(), 3)

	// a redirected GET is cached under the path that was asked for
	venues, err := tevo.NewEndpoint(tevo.VenuesResource, &tevo.Options{Parent: conn})
	require.NoError(t, err)

	_, _, err = venues.Request(ctx, tevo.MethodGet, "/old", nil)
	require.NoError(t, err)
	env, apiErr, err := venues.Request(ctx, tevo.MethodGet, "/old", nil)
	require.NoError(t, err)
	assert.Nil(t, apiErr)
	assert.Equal(t, "Fenway Park", env.Body["name"])
	assert.Same(t, conn, env.Connection)
	assert.Len(t, transport.Calls(), 5)

	stats := conn.CacheStats()
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Sets)

	require.NoError(t, conn.PurgeCache(ctx))

	_, err = conn.Venues().Show(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, transport.Calls(), 6)
}

func TestConnection_CacheOffByDefault(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(nil)
	conn := newTestConnection(t, transport)

	assert.Nil(t, conn.CacheStats())
	require.NoError(t, conn.PurgeCache(context.Background()))

	venues, err := tevo.NewEndpoint(tevo.VenuesResource, &tevo.Options{Parent: conn})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, err = venues.Request(context.Background(), tevo.MethodGet, "", nil)
		require.NoError(t, err)
	}

	assert.Len(t, transport.Calls(), 2)
}

func TestConnection_CachesOnlyGets(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(nil)
	conn := newTestConnection(t, transport, func(cfg *tevo.Config) {
		cfg.Cache = tevo.DefaultCacheConfig()
	})

	venues, err := tevo.NewEndpoint(tevo.VenuesResource, &tevo.Options{Parent: conn})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, err = venues.Request(context.Background(), tevo.MethodPost, "", tevo.Params{"a": 1})
		require.NoError(t, err)
	}

	assert.Len(t, transport.Calls(), 2)
	assert.Equal(t, int64(0), conn.CacheStats().Sets)
}

func TestConnection_CacheIsScopedPerAccount(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)

	sharedRedis := func(cfg *tevo.Config) {
		cfg.Cache = &tevo.CacheConfig{Type: tevo.CacheTypeRedis, Redis: &tevo.RedisCacheConfig{Addr: server.Addr()}}
	}

	venueNamed := func(name string) *fakeTransport {
		return newFakeTransport(func(issuedCall) (*tevo.RawResponse, error) {
			return jsonResponse(http.StatusOK, `{"id":1,"name":"`+name+`"}`), nil
		})
	}

	transportA := venueNamed("Account A")
	connA := newTestConnection(t, transportA, sharedRedis)

	transportB := venueNamed("Account B")
	connB := newTestConnection(t, transportB, sharedRedis, func(cfg *tevo.Config) {
		cfg.Token = "token-b"
		cfg.APIURL = "https://api.sandbox.other"
	})

	transportC := venueNamed("Account C")
	connC := newTestConnection(t, transportC, sharedRedis, func(cfg *tevo.Config) {
		cfg.Token = "token-c"
	})

	ctx := context.Background()

	for _, tc := range []struct {
		conn      *tevo.Connection
		transport *fakeTransport
		name      string
	}{
		{connA, transportA, "Account A"},
		{connB, transportB, "Account B"},
		{connC, transportC, "Account C"},
		{connA, transportA, "Account A"},
	} {
		venue, err := tc.conn.Venues().Show(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, tc.name, venue.Name)
	}

	assert.Len(t, transportA.Calls(), 1)
	assert.Len(t, transportB.Calls(), 1)
	assert.Len(t, transportC.Calls(), 1)

	keys := server.Keys()
	require.Len(t, keys, 3)

	for _, key := range keys {
		assert.NotContains(t, key, "test-token")
		assert.NotContains(t, key, "token-b")
		assert.NotContains(t, key, "token-c")
	}

	for _, conn := range []*tevo.Connection{connA, connB, connC} {
		require.NoError(t, conn.Close())
	}
}

func TestConnection_WritesEvictStaleReads(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		name = "Old"
	)

	transport := newFakeTransport(func(call issuedCall) (*tevo.RawResponse, error) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case call.Verb == tevo.MethodPut && call.Path == "/clients/5":
			name, _ = call.Params["name"].(string)

			return jsonResponse(http.StatusOK, `{"id":5,"name":"`+name+`"}`), nil
		case call.Path == "/clients/5":
			return jsonResponse(http.StatusOK, `{"id":5,"name":"`+name+`"}`), nil
		case call.Path == "/clients":
			return jsonResponse(http.StatusOK, `{"current_page":1,"per_page":10,"total_entries":1,"clients":[{"id":5,"name":"`+name+`"}]}`), nil
		default:
			return jsonResponse(http.StatusOK, `{"id":6,"name":"Other"}`), nil
		}
	})

	conn := newTestConnection(t, transport, func(cfg *tevo.Config) {
		cfg.Cache = tevo.DefaultCacheConfig()
	})
	ctx := context.Background()

	client, err := conn.Clients().Show(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Old", client.Name)

	list, err := conn.Clients().List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Old", list.Entries[0].Name)

	_, err = conn.Clients().Show(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, transport.Calls(), 3)

	updated, err := conn.Clients().Update(ctx, 5, &tevo.ClientRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	client, err = conn.Clients().Show(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "New", client.Name)

	list, err = conn.Clients().List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "New", list.Entries[0].Name)

	// an unrelated record stays cached
	_, err = conn.Clients().Show(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, transport.Calls(), 6)
}

func TestConnection_Close(t *testing.T) {
	t.Parallel()

	assert.NoError(t, newTestConnection(t, newFakeTransport(nil)).Close())

	server := miniredis.RunT(t)
	conn := newTestConnection(t, newFakeTransport(nil), func(cfg *tevo.Config) {
		cfg.Cache = &tevo.CacheConfig{
			Type:   tevo.CacheTypeRedis,
			Redis:  &tevo.RedisCacheConfig{Addr: server.Addr()},
			Memory: &tevo.MemoryCacheConfig{MaxSize: 10},
		}
	})

	_, err := conn.Venues().Show(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// the owned client is closed, so the next miss cannot reach redis
	_, err = conn.Venues().Show(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), conn.CacheStats().Errors)
}
