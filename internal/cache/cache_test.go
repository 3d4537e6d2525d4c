package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)

	c.cleanup()
	assert.Zero(t, c.Len())
}

func TestCacheCopiesValues(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestKey(t *testing.T) {
	a := Key("newsapi", "senado", "es")
	assert.Equal(t, a, Key("newsapi", "senado", "es"))
	assert.NotEqual(t, a, Key("newsapi", "senad", "oes"))
	assert.Contains(t, a, "newsapi:")
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Minute))
	_, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
