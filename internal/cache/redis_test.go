package cache

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	cache, err := InitServer(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, cache.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClaim(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	ok, err := cache.Claim(ctx, "nonce:abc", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cache.Claim(ctx, "nonce:abc", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = cache.Claim(ctx, "nonce:abc", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cache, err := InitServer(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.Nil(t, cache)
	assert.Error(t, err)
}

type countingOracle struct {
	calls atomic.Int32
	price float64
	err   error
}

func (o *countingOracle) Price(context.Context) (float64, error) {
	o.calls.Add(1)
	return o.price, o.err
}

func TestCachedOracle(t *testing.T) {
	cache, mr := setupTestCache(t)
	upstream := &countingOracle{price: 20}
	oracle := NewCachedOracle(cache, upstream, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		price, err := oracle.Price(ctx)
		require.NoError(t, err)
		require.Equal(t, 20.0, price)
	}
	require.Equal(t, int32(1), upstream.calls.Load())

	mr.FastForward(2 * time.Minute)
	upstream.price = 25

	price, err := oracle.Price(ctx)
	require.NoError(t, err)
	require.Equal(t, 25.0, price)
	require.Equal(t, int32(2), upstream.calls.Load())
}

func TestCachedOracle_UpstreamError(t *testing.T) {
	cache, _ := setupTestCache(t)
	oracle := NewCachedOracle(cache, &countingOracle{err: errors.New("down")}, time.Minute, zerolog.Nop())

	_, err := oracle.Price(context.Background())
	require.Error(t, err)
}

func TestCachedOracle_CacheFailureIsLogged(t *testing.T) {
	cache, mr := setupTestCache(t)
	var logs bytes.Buffer
	upstream := &countingOracle{price: 20}
	oracle := NewCachedOracle(cache, upstream, time.Minute, zerolog.New(&logs))

	mr.SetError("ERR cache unavailable")

	price, err := oracle.Price(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20.0, price)
	assert.Contains(t, logs.String(), "failed to read cached oracle price")
	assert.Contains(t, logs.String(), "failed to cache oracle price")

	mr.SetError("")
	_, err = oracle.Price(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.calls.Load())
}
