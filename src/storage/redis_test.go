package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Day   int    `json:"day"`
	Notes string `json:"notes"`
}

func TestNewRedisStorage_RequiresURL(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "", "test:", time.Minute)
	assert.Error(t, err)

	_, err = NewRedisStorage(context.Background(), "not a url", "test:", time.Minute)
	assert.Error(t, err)
}

func TestRedisStorage_SetGetDelete(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	prefix := "detective-test:" + time.Now().Format("150405.000000") + ":"

	store, err := NewRedisStorage(ctx, url, prefix, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.DeleteMatching(ctx, "*")
		_ = store.Close()
	})

	require.NoError(t, store.Set(ctx, "a:1", record{Day: 2, Notes: "the cook lied"}))
	require.NoError(t, store.Set(ctx, "a:2", record{Day: 3}))
	require.NoError(t, store.Set(ctx, "b:1", record{Day: 4}))

	var got record
	require.NoError(t, store.GetAndTouch(ctx, "a:1", &got))
	assert.Equal(t, record{Day: 2, Notes: "the cook lied"}, got)

	ttl, err := store.TTL(ctx, "a:1")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	n, err := store.DeleteMatching(ctx, "a:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = store.GetAndTouch(ctx, "a:2", &got)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "b:1"))
	assert.ErrorIs(t, store.GetAndTouch(ctx, "b:1", &got), ErrNotFound)
}
