package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vetty/storefront/internal/backend"
	"github.com/vetty/storefront/internal/domain"
	"github.com/vetty/storefront/internal/event"
	"github.com/vetty/storefront/internal/repository"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/logger"
)

// OrderCreator submits confirmed order requests to the commerce backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order *domain.OrderRequest, authToken string) (*backend.Order, error)
}

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"` // cents
	SubmittedAt time.Time `json:"submitted_at"`
}

// CheckoutService turns a cart into a backend order. The cart is cleared
// only after the backend confirms the order; any failure leaves the cart
// exactly as it was so the user can retry.
type CheckoutService struct {
	repo    repository.CartRepository
	catalog domain.EntryLookup
	orders  OrderCreator
	events  *event.Publisher
	logger  *slog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(repo repository.CartRepository, catalog domain.EntryLookup, orders OrderCreator, events *event.Publisher, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		repo:    repo,
		catalog: catalog,
		orders:  orders,
		events:  events,
		logger:  log,
	}
}

// Submit resolves the cart against the current catalog, validates it, and
// hands the order to the backend. An empty cart and a cart with unresolved
// lines are both rejected before anything leaves the process.
func (s *CheckoutService) Submit(ctx context.Context, userID, authToken string) (*CheckoutResult, error) {
	log := logger.WithContext(ctx, s.logger)

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// No stored cart means nothing to check out; BuildOrderRequest
		// rejects the empty summary below.
		cart = &domain.Cart{UserID: userID}
	}

	summary := domain.ComputeSummary(cart.Lines, s.catalog)
	order, err := domain.BuildOrderRequest(summary)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.orders.CreateOrder(ctx, order, authToken)
	if err != nil {
		log.Warn("order submission failed, cart retained",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	// The order is confirmed; only now may the cart go away. A failure to
	// clear is logged but does not undo the checkout.
	if err := s.repo.Delete(ctx, userID); err != nil {
		log.Error("failed to clear cart after confirmed order",
			slog.String("user_id", userID),
			slog.String("order_id", confirmed.ID),
			slog.String("error", err.Error()))
	} else {
		s.events.CartCleared(ctx, event.CartCleared{UserID: userID, Reason: "checkout"})
	}

	s.events.OrderSubmitted(ctx, event.OrderSubmitted{
		UserID:  userID,
		OrderID: confirmed.ID,
		Items:   order.Items,
		Total:   order.Total,
	})

	log.Info("checkout completed",
		slog.String("user_id", userID),
		slog.String("order_id", confirmed.ID),
		slog.Int64("total", order.Total))

	return &CheckoutResult{
		OrderID:     confirmed.ID,
		Status:      confirmed.Status,
		Total:       order.Total,
		SubmittedAt: time.Now().UTC(),
	}, nil
}
