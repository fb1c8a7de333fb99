package http

import (
	"log/slog"
	"net/http"

	"github.com/vetty/storefront/internal/service"
	"github.com/vetty/storefront/pkg/httputil"
)

// CheckoutHandler serves the cart-to-order handoff.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: log}
}

// Submit handles POST /checkout. Rejections for an empty cart (422) or
// unresolved lines (409) leave the cart untouched, as does a backend
// failure (502).
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.checkout.Submit(r.Context(), userID(r), authToken(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
