package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sizimon/grippendor/internal/storage"
)

// newTestStore connects to REDIS_TEST_ADDR under a throwaway prefix.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	s, err := New(ctx, Config{Addr: addr, Prefix: "grippendor-test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Clear(ctx)
		_ = s.Close()
	})
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "config_g1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.Set(ctx, "config_g1", []byte(`{"data":{}}`)))
	got, err := s.Get(ctx, "config_g1")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, string(got))

	require.NoError(t, s.Delete(ctx, "config_g1"))
	_, err = s.Get(ctx, "config_g1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStore_ClearIsPrefixScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	other := NewWithClient(s.client, "grippendor-other:"+uuid.NewString()+":")
	t.Cleanup(func() { _ = other.Clear(ctx) })
	require.NoError(t, other.Set(ctx, "k", []byte("keep")))

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(ctx, k, []byte(k)))
	}
	require.NoError(t, s.Clear(ctx))

	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Get(ctx, k)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "key %s", k)
	}
	got, err := other.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}
