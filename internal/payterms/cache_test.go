package payterms

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	store *fakeStore
	loads int
}

func (c *countingReader) GetCondition(ctx context.Context, id int64) (PaymentCondition, error) {
	c.loads++
	return c.store.GetCondition(ctx, id)
}

func newCacheFixture(t *testing.T) (*CachedSource, *countingReader, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newFakeStore()
	method := seedMethod(t, store)
	_, err := store.CreateCondition(context.Background(), validCondition(method.ID))
	require.NoError(t, err)

	reader := &countingReader{store: store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedSource(reader, client, time.Minute, logger), reader, mr
}

func TestCachedSourceReadThrough(t *testing.T) {
	cache, reader, _ := newCacheFixture(t)
	ctx := context.Background()

	first, err := cache.GetCondition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.loads)

	second, err := cache.GetCondition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.loads, "second read must hit the cache")
	assert.Equal(t, first.Description, second.Description)
	assert.Len(t, second.Templates, 2)
}

func TestCachedSourceMissPropagatesNotFound(t *testing.T) {
	cache, _, _ := newCacheFixture(t)

	_, err := cache.GetCondition(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedSourceInvalidate(t *testing.T) {
	cache, reader, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.GetCondition(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, reader.loads)

	cache.Invalidate(ctx, 2)

	_, err = cache.GetCondition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, reader.loads, "invalidated entry must reload")
}

func TestCachedSourceCorruptEntryReloads(t *testing.T) {
	cache, reader, mr := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(conditionKey(2), "{not json"))

	cond, err := cache.GetCondition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.loads)
	assert.Equal(t, int64(2), cond.ID)
}

func TestCachedSourceWarm(t *testing.T) {
	cache, reader, _ := newCacheFixture(t)
	ctx := context.Background()

	conditions, err := reader.store.ListConditions(ctx)
	require.NoError(t, err)
	reader.loads = 0

	require.NoError(t, cache.Warm(ctx, conditions))

	_, err = cache.GetCondition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, reader.loads, "warmed entry must not hit the store")
}

func TestCachedSourceNilClientFallsThrough(t *testing.T) {
	store := newFakeStore()
	method := seedMethod(t, store)
	created, err := store.CreateCondition(context.Background(), validCondition(method.ID))
	require.NoError(t, err)

	reader := &countingReader{store: store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := NewCachedSource(reader, nil, time.Minute, logger)

	for i := 0; i < 3; i++ {
		_, err := cache.GetCondition(context.Background(), created.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, reader.loads)
}
