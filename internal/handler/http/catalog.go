package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vetty/storefront/internal/catalog"
	"github.com/vetty/storefront/internal/domain"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/httputil"
)

// CatalogHandler serves catalog reads and manual refreshes.
type CatalogHandler struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(store *catalog.Store, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, logger: log}
}

func kindFromURL(r *http.Request) (domain.ItemKind, error) {
	kind, ok := domain.ParseItemKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", apperrors.InvalidInput("kind must be one of: product, service")
	}
	return kind, nil
}

// List handles GET /catalog/{kind}. A kind that has never loaded
// successfully returns 503 rather than an empty list.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromURL(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status, _ := h.store.Status(kind)
	entries := h.store.List(kind)
	if len(entries) == 0 && status != catalog.StatusReady {
		httputil.WriteError(w, r, apperrors.CatalogUnavailable(string(kind)), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entries})
}

// Get handles GET /catalog/{kind}/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromURL(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id := chi.URLParam(r, "id")
	entry, ok := h.store.GetEntry(kind, id)
	if !ok {
		// A kind that has never loaded cannot distinguish "missing" from
		// "not fetched yet".
		if status, _ := h.store.Status(kind); status != catalog.StatusReady && len(h.store.List(kind)) == 0 {
			httputil.WriteError(w, r, apperrors.CatalogUnavailable(string(kind)), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.NotFound(string(kind), id), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entry})
}

// Refresh handles POST /catalog/{kind}/refresh, re-fetching the kind from
// the backend.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromURL(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.store.Load(r.Context(), kind); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status, _ := h.store.Status(kind)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"kind":    kind,
		"status":  status,
		"entries": len(h.store.List(kind)),
	}})
}
