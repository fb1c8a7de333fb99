package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetty/storefront/internal/domain"
	apperrors "github.com/vetty/storefront/pkg/errors"
)

func newTestRepo(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCartRepository(client, time.Hour), mr
}

func testCart(userID string, version int) *domain.Cart {
	return &domain.Cart{
		ID:      "cart-1",
		UserID:  userID,
		Version: version,
		Lines: []domain.CartLine{
			{Kind: domain.KindProduct, ItemID: "1", Quantity: 2},
		},
	}
}

func TestCartRepositoryGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	t.Run("missing cart returns not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "nobody")

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("round trips a saved cart", func(t *testing.T) {
		cart := testCart("user-1", 1)
		ok, err := repo.SaveIfVersion(ctx, cart, 0)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := repo.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, cart.UserID, got.UserID)
		assert.Equal(t, cart.Version, got.Version)
		require.Len(t, got.Lines, 1)
		assert.Equal(t, 2, got.Lines[0].Quantity)
	})
}

func TestCartRepositorySaveIfVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("first save requires expected version zero", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		ok, err := repo.SaveIfVersion(ctx, testCart("user-1", 1), 5)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.SaveIfVersion(ctx, testCart("user-1", 1), 0)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		ok, err := repo.SaveIfVersion(ctx, testCart("user-1", 1), 0)
		require.NoError(t, err)
		require.True(t, ok)

		// A writer that read version 0 lost the race.
		ok, err = repo.SaveIfVersion(ctx, testCart("user-1", 1), 0)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.SaveIfVersion(ctx, testCart("user-1", 2), 1)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("write refreshes the ttl", func(t *testing.T) {
		repo, mr := newTestRepo(t)

		ok, err := repo.SaveIfVersion(ctx, testCart("user-1", 1), 0)
		require.NoError(t, err)
		require.True(t, ok)

		ttl := mr.TTL("cart:user-1")
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Hour)
	})

	t.Run("expired cart is gone", func(t *testing.T) {
		repo, mr := newTestRepo(t)

		ok, err := repo.SaveIfVersion(ctx, testCart("user-1", 1), 0)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Hour)

		_, err = repo.Get(ctx, "user-1")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestCartRepositoryDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.SaveIfVersion(ctx, testCart("user-1", 1), 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "user-1"))
	require.NoError(t, repo.Delete(ctx, "user-1"))

	_, err = repo.Get(ctx, "user-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
