package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheGetOrFetchStoresAndHits(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	queryCache := New(redisClient, nil, "institute", zerolog.Nop())

	ctx := context.Background()
	var fetches int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		return []byte(`{"items":[]}`), nil
	}

	value, hit, err := queryCache.GetOrFetch(ctx, "events:list:v1:test", time.Minute, fetch)
	require.NoError(t, err)
	require.False(t, hit)
	require.JSONEq(t, `{"items":[]}`, string(value))

	value, hit, err = queryCache.GetOrFetch(ctx, "events:list:v1:test", time.Minute, fetch)
	require.NoError(t, err)
	require.True(t, hit)
	require.JSONEq(t, `{"items":[]}`, string(value))
	require.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestQueryCacheFetchErrorIsNotCached(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	queryCache := New(redisClient, nil, "institute", zerolog.Nop())

	ctx := context.Background()
	boom := errors.New("database gone")
	_, hit, err := queryCache.GetOrFetch(ctx, "events:list:v1:bad", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, hit)
	require.False(t, mini.Exists("events:list:v1:bad"))

	value, hit, err := queryCache.GetOrFetch(ctx, "events:list:v1:bad", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte(`"ok"`), nil
	})
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, `"ok"`, string(value))
}

func TestQueryCacheInvalidateRemovesPrefixOnly(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	queryCache := New(redisClient, nil, "institute", zerolog.Nop())

	ctx := context.Background()
	seed := func(key string) {
		_, _, err := queryCache.GetOrFetch(ctx, key, time.Minute, func(ctx context.Context) ([]byte, error) {
			return []byte(`1`), nil
		})
		require.NoError(t, err)
	}
	seed("events:list:v1:a")
	seed("events:list:v1:b")
	seed("sponsors:list:v1:a")

	require.NoError(t, queryCache.Invalidate(ctx, "events"))

	require.False(t, mini.Exists("events:list:v1:a"))
	require.False(t, mini.Exists("events:list:v1:b"))
	require.True(t, mini.Exists("sponsors:list:v1:a"))
}

func TestQueryCacheInvalidateRequiresPrefix(t *testing.T) {
	queryCache := New(nil, nil, "institute", zerolog.Nop())
	require.Error(t, queryCache.Invalidate(context.Background(), ""))
}

func TestQueryCacheNotifiesRegisteredHandlers(t *testing.T) {
	queryCache := New(nil, nil, "institute", zerolog.Nop())

	var got []string
	queryCache.OnInvalidate("settings", func(prefix string) {
		got = append(got, prefix)
	})
	queryCache.OnInvalidate("events", func(prefix string) {
		t.Fatalf("event handler should not fire for prefix %q", prefix)
	})

	require.NoError(t, queryCache.Invalidate(context.Background(), "settings:key:hero_lines"))
	require.NoError(t, queryCache.Invalidate(context.Background(), "settings"))

	require.Equal(t, []string{"settings:key:hero_lines", "settings"}, got)
}

func TestQueryCacheNilRedisIsPassThrough(t *testing.T) {
	queryCache := New(nil, nil, "institute", zerolog.Nop())

	ctx := context.Background()
	var fetches int
	for i := 0; i < 3; i++ {
		value, hit, err := queryCache.GetOrFetch(ctx, "events:list:v1:x", time.Minute, func(ctx context.Context) ([]byte, error) {
			fetches++
			return []byte(`2`), nil
		})
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, `2`, string(value))
	}
	require.Equal(t, 3, fetches)
}
