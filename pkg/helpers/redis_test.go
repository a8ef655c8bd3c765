package helpers_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-api/pkg/helpers"
)

type cachedThing struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisJSONRoundTrip(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	in := cachedThing{Name: "a", N: 7}
	require.NoError(t, helpers.RedisSetJSON(ctx, rdb, "k", in, time.Minute))

	var out cachedThing
	ok, err := helpers.RedisGetJSON(ctx, rdb, "k", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)
}

func TestRedisGetJSONMissingKey(t *testing.T) {
	// a cache miss is not an error
	rdb := testClient(t)

	var out cachedThing
	ok, err := helpers.RedisGetJSON(context.Background(), rdb, "absent", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisDel(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	require.NoError(t, helpers.RedisSetJSON(ctx, rdb, "k", cachedThing{}, time.Minute))
	require.NoError(t, helpers.RedisDel(ctx, rdb, "k"))

	var out cachedThing
	ok, err := helpers.RedisGetJSON(ctx, rdb, "k", &out)
	require.NoError(t, err)
	require.False(t, ok)
}
