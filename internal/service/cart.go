package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vetty/storefront/internal/domain"
	"github.com/vetty/storefront/internal/event"
	"github.com/vetty/storefront/internal/repository"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/logger"
)

// maxSaveRetries bounds the optimistic-concurrency retry loop on cart
// writes. Conflicts are rare; two retries cover a user double-clicking.
const maxSaveRetries = 3

// CartService owns all cart mutations and reads. Mutations are load-modify-
// save with a version check so concurrent requests for the same user cannot
// lose updates. Summaries are always recomputed against the live catalog.
type CartService struct {
	repo    repository.CartRepository
	catalog domain.EntryLookup
	events  *event.Publisher
	logger  *slog.Logger
	cartTTL time.Duration
}

// NewCartService creates a cart service.
func NewCartService(repo repository.CartRepository, catalog domain.EntryLookup, events *event.Publisher, log *slog.Logger, cartTTL time.Duration) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
		events:  events,
		logger:  log,
		cartTTL: cartTTL,
	}
}

// GetCart returns the user's cart, creating an empty unsaved one if none is
// stored. A cart only hits the store once it has a mutation.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newCart(userID), nil
		}
		return nil, err
	}
	return cart, nil
}

// Summary returns the cart resolved against the current catalog, with
// per-line subtotals and an exact integer-cents total.
func (s *CartService) Summary(ctx context.Context, userID string) (*domain.Cart, domain.CartSummary, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, domain.CartSummary{}, err
	}
	return cart, domain.ComputeSummary(cart.Lines, s.catalog), nil
}

// AddItem adds quantity of a catalog identity to the cart, merging into an
// existing line for the same (kind, item id). The item must exist in the
// current catalog; lines may later become unresolved if the catalog changes,
// but they never start that way.
func (s *CartService) AddItem(ctx context.Context, userID string, kind domain.ItemKind, itemID string, quantity int) (*domain.Cart, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput("unknown item kind: " + string(kind))
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if _, ok := s.catalog.GetEntry(kind, itemID); !ok {
		return nil, apperrors.NotFound(string(kind), itemID)
	}

	cart, err := s.mutate(ctx, userID, func(c *domain.Cart) {
		c.AddLine(kind, itemID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.events.CartUpdated(ctx, event.CartUpdated{
		UserID:    userID,
		Action:    "add",
		Lines:     cart.Lines,
		LineCount: cart.LineCount(),
		Version:   cart.Version,
	})
	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// leave the line untouched, and updating an absent line changes nothing;
// both cases return the cart as is rather than an error.
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, kind domain.ItemKind, itemID string, quantity int) (*domain.Cart, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput("unknown item kind: " + string(kind))
	}

	cart, err := s.mutate(ctx, userID, func(c *domain.Cart) {
		c.SetQuantity(kind, itemID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.events.CartUpdated(ctx, event.CartUpdated{
		UserID:    userID,
		Action:    "update",
		Lines:     cart.Lines,
		LineCount: cart.LineCount(),
		Version:   cart.Version,
	})
	return cart, nil
}

// RemoveItem removes a line from the cart. Removing a line that is not
// present is a no-op, so removal is idempotent.
func (s *CartService) RemoveItem(ctx context.Context, userID string, kind domain.ItemKind, itemID string) (*domain.Cart, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput("unknown item kind: " + string(kind))
	}

	cart, err := s.mutate(ctx, userID, func(c *domain.Cart) {
		c.RemoveLine(kind, itemID)
	})
	if err != nil {
		return nil, err
	}

	s.events.CartUpdated(ctx, event.CartUpdated{
		UserID:    userID,
		Action:    "remove",
		Lines:     cart.Lines,
		LineCount: cart.LineCount(),
		Version:   cart.Version,
	})
	return cart, nil
}

// ClearCart deletes the user's stored cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.events.CartCleared(ctx, event.CartCleared{UserID: userID, Reason: "user"})
	return nil
}

// mutate runs the load-modify-save loop with the version check. On a version
// conflict the cart is reloaded and the mutation reapplied.
func (s *CartService) mutate(ctx context.Context, userID string, fn func(*domain.Cart)) (*domain.Cart, error) {
	log := logger.WithContext(ctx, s.logger)

	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		cart, err := s.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}

		expected := cart.Version
		fn(cart)
		cart.Version = expected + 1
		now := time.Now().UTC()
		cart.UpdatedAt = now
		cart.ExpiresAt = now.Add(s.cartTTL)

		ok, err := s.repo.SaveIfVersion(ctx, cart, expected)
		if err != nil {
			return nil, err
		}
		if ok {
			return cart, nil
		}

		log.Debug("cart version conflict, retrying",
			slog.String("user_id", userID),
			slog.Int("attempt", attempt+1))
	}

	return nil, apperrors.Conflict("cart was modified concurrently, please retry")
}

func (s *CartService) newCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Lines:     []domain.CartLine{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}
