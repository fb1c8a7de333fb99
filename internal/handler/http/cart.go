package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vetty/storefront/internal/domain"
	"github.com/vetty/storefront/internal/service"
	"github.com/vetty/storefront/pkg/httputil"
	"github.com/vetty/storefront/pkg/validator"
)

// CartHandler serves cart reads and mutations for the authenticated user.
type CartHandler struct {
	carts  *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(carts *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: log}
}

type addItemRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=product service"`
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// cartResponse is the cart joined with its catalog-resolved summary.
type cartResponse struct {
	ID      string             `json:"id"`
	UserID  string             `json:"user_id"`
	Summary domain.CartSummary `json:"summary"`
	Version int                `json:"version"`
}

func (h *CartHandler) respond(w http.ResponseWriter, status int, cart *domain.Cart, summary domain.CartSummary) {
	httputil.WriteJSON(w, status, httputil.Response{Data: cartResponse{
		ID:      cart.ID,
		UserID:  cart.UserID,
		Summary: summary,
		Version: cart.Version,
	}})
}

// Get handles GET /cart, returning the cart resolved against the current
// catalog.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, summary, err := h.carts.Summary(r.Context(), userID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.respond(w, http.StatusOK, cart, summary)
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	kind, _ := domain.ParseItemKind(req.Kind)
	if _, err := h.carts.AddItem(r.Context(), userID(r), kind, req.ItemID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, summary, err := h.carts.Summary(r.Context(), userID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.respond(w, http.StatusOK, cart, summary)
}

// UpdateQuantity handles PUT /cart/items/{kind}/{id}. A quantity below one
// is accepted and ignored; removal is its own endpoint.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromURL(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req updateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if _, err := h.carts.UpdateQuantity(r.Context(), userID(r), kind, chi.URLParam(r, "id"), req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, summary, err := h.carts.Summary(r.Context(), userID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.respond(w, http.StatusOK, cart, summary)
}

// RemoveItem handles DELETE /cart/items/{kind}/{id}. Removing an absent item
// still returns the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromURL(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if _, err := h.carts.RemoveItem(r.Context(), userID(r), kind, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, summary, err := h.carts.Summary(r.Context(), userID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.respond(w, http.StatusOK, cart, summary)
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), userID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
