package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

func TestCacheRoundTrip(t *testing.T) {
	repo := NewCacheRepository(0)
	defer repo.Close()
	ctx := context.Background()

	_, err := repo.Get(ctx, "report:by_item_name:en:abc")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "report:by_item_name:en:abc", []byte("HARM ANALYSIS"), time.Minute))

	data, err := repo.Get(ctx, "report:by_item_name:en:abc")
	require.NoError(t, err)
	assert.Equal(t, "HARM ANALYSIS", string(data))

	ok, err := repo.Exists(ctx, "report:by_item_name:en:abc")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "report:by_item_name:en:abc"))
	ok, _ = repo.Exists(ctx, "report:by_item_name:en:abc")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	repo := NewCacheRepository(0)
	defer repo.Close()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, repo.Set(ctx, "default", []byte("b"), 0))

	clock = clock.Add(2 * time.Minute)

	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	_, err = repo.Get(ctx, "default")
	assert.NoError(t, err)

	assert.Equal(t, 2, repo.Len())
	repo.Purge()
	assert.Equal(t, 1, repo.Len())
}

func TestCacheCopiesValues(t *testing.T) {
	repo := NewCacheRepository(0)
	defer repo.Close()
	ctx := context.Background()

	value := []byte("plan")
	require.NoError(t, repo.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "plan", string(got))
}

func TestCloseIsIdempotent(t *testing.T) {
	repo := NewCacheRepository(time.Millisecond)
	assert.NoError(t, repo.Close())
	assert.NoError(t, repo.Close())
}
