package redis_cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopNeverHits(t *testing.T) {
	ctx := context.Background()
	var c Nop
	require.NoError(t, c.Set(ctx, "k", 1))

	var v int
	ok, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidatePrefix(ctx, "k"))
}

func TestCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := New(rdb, "test-"+uuid.NewString(), time.Minute)

	type county struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Set(ctx, "directory:counties", []county{{Name: "Nairobi"}}))
	require.NoError(t, c.Set(ctx, "directory:search:kisumu", []county{{Name: "Kisumu"}}))
	require.NoError(t, c.Set(ctx, "articles:all", []string{"x"}))

	var got []county
	ok, err := c.Get(ctx, "directory:counties", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Nairobi", got[0].Name)

	require.NoError(t, c.InvalidatePrefix(ctx, "directory:"))

	ok, err = c.Get(ctx, "directory:search:kisumu", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	var articles []string
	ok, err = c.Get(ctx, "articles:all", &articles)
	require.NoError(t, err)
	assert.True(t, ok)
}
