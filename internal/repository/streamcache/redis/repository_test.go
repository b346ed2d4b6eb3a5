package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, 10*time.Minute), s
}

func TestStreamURLRoundTrip(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetStreamURL(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, r.SetStreamURL(ctx, "dQw4w9WgXcQ", "https://cdn.example/audio.m4a"))

	url, err := r.GetStreamURL(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/audio.m4a", url)

	s.FastForward(11 * time.Minute)

	_, err = r.GetStreamURL(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrCacheMiss, "entry must expire with the ttl")
}

func TestSearchRoundTrip(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetSearch(ctx, "take five", 5)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, r.SetSearch(ctx, "take five", 5, []byte(`{"total":1}`)))

	payload, err := r.GetSearch(ctx, "take five", 5)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1}`, string(payload))

	// Same query with another limit is a distinct entry.
	_, err = r.GetSearch(ctx, "take five", 10)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
