package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vetty/storefront/internal/domain"
	apperrors "github.com/vetty/storefront/pkg/errors"
)

// CartRepository is an in-memory cart store with the same version-checked
// write semantics as the Redis implementation. Intended for tests and local
// development without Redis.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

// NewCartRepository creates an empty in-memory cart repository.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string][]byte)}
}

// Get fetches a user's cart. Returns ErrNotFound when no cart is stored.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	r.mu.RLock()
	data, ok := r.carts[userID]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("cart", userID)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveIfVersion persists the cart if the stored version matches
// expectedVersion (0 meaning absent). Reports false on a mismatch.
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.carts[cart.UserID]; ok {
		var current domain.Cart
		if err := json.Unmarshal(stored, &current); err != nil {
			return false, err
		}
		if current.Version != expectedVersion {
			return false, nil
		}
	} else if expectedVersion != 0 {
		return false, nil
	}

	r.carts[cart.UserID] = data
	return true, nil
}

// Delete removes a user's cart. Deleting an absent cart is a no-op.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}
