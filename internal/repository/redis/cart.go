package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vetty/storefront/internal/domain"
	apperrors "github.com/vetty/storefront/pkg/errors"
)

const keyPrefix = "cart:"

// saveIfVersionScript writes the cart only when the stored version matches
// the expected one. Expected version 0 means the key must be absent. Runs
// atomically server-side, so concurrent writers cannot interleave between
// the read and the write.
var saveIfVersionScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local obj = cjson.decode(cur)
  if tonumber(obj.version) ~= tonumber(ARGV[2]) then
    return 0
  end
elseif tonumber(ARGV[2]) ~= 0 then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// CartRepository is a Redis-backed cart store. Carts are stored as JSON
// values with a sliding TTL refreshed on every write.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return keyPrefix + userID
}

// Get fetches a user's cart. Returns ErrNotFound when no cart is stored.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound("cart", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

// SaveIfVersion persists the cart if the stored version matches
// expectedVersion. Reports false without error on a version mismatch.
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return false, fmt.Errorf("marshal cart: %w", err)
	}

	res, err := saveIfVersionScript.Run(ctx, r.client,
		[]string{cartKey(cart.UserID)},
		string(data), expectedVersion, r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis save cart: %w", err)
	}
	return res == 1, nil
}

// Delete removes a user's cart. Deleting an absent cart is not an error.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

// Ping verifies connectivity to Redis. Used by health checks.
func (r *CartRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
