package repository

import (
	"context"

	"github.com/vetty/storefront/internal/domain"
)

// CartRepository stores carts keyed by user ID.
//
// SaveIfVersion is an optimistic-concurrency write: it persists the cart only
// if the stored cart's version equals expectedVersion (0 meaning no cart is
// stored yet) and reports whether the write was applied. Callers bump
// cart.Version before saving and retry on a false return.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)
	Delete(ctx context.Context, userID string) error
}
