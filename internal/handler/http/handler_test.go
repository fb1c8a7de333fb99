package http

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetty/storefront/internal/backend"
	"github.com/vetty/storefront/internal/catalog"
	"github.com/vetty/storefront/internal/domain"
	"github.com/vetty/storefront/internal/event"
	"github.com/vetty/storefront/internal/repository/memory"
	"github.com/vetty/storefront/internal/service"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/health"
	"github.com/vetty/storefront/pkg/logger"
	"github.com/vetty/storefront/pkg/middleware"
)

type fixedFetcher struct {
	entries map[domain.ItemKind][]domain.CatalogEntry
}

func (f *fixedFetcher) FetchCatalog(ctx context.Context, kind domain.ItemKind) ([]domain.CatalogEntry, error) {
	return f.entries[kind], nil
}

type stubOrderCreator struct {
	order *backend.Order
	err   error
}

func (s *stubOrderCreator) CreateOrder(ctx context.Context, order *domain.OrderRequest, authToken string) (*backend.Order, error) {
	return s.order, s.err
}

type stubAppointmentCreator struct {
	req *backend.ServiceRequest
	err error
}

func (s *stubAppointmentCreator) CreateServiceRequest(ctx context.Context, serviceID string, appointmentTime time.Time, authToken string) (*backend.ServiceRequest, error) {
	return s.req, s.err
}

type fixture struct {
	server *httptest.Server
	repo   *memory.CartRepository
	orders *stubOrderCreator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New("test", "error")

	store := catalog.NewStore(&fixedFetcher{entries: map[domain.ItemKind][]domain.CatalogEntry{
		domain.KindProduct: {
			{ID: "1", Kind: domain.KindProduct, Name: "Flea Collar", UnitPrice: 1999},
			{ID: "2", Kind: domain.KindProduct, Name: "Dog Bed", UnitPrice: 4500},
		},
		domain.KindService: {
			{ID: "7", Kind: domain.KindService, Name: "Grooming", UnitPrice: 2500},
		},
	}}, log)
	require.NoError(t, store.LoadAll(context.Background()))

	repo := memory.NewCartRepository()
	events := event.NewPublisher(nil, log)
	orders := &stubOrderCreator{order: &backend.Order{ID: "42", Status: "confirmed"}}
	appointments := &stubAppointmentCreator{req: &backend.ServiceRequest{ID: "5", ServiceID: "7", Status: "pending"}}

	carts := service.NewCartService(repo, store, events, log, time.Hour)
	checkout := service.NewCheckoutService(repo, store, orders, events, log)
	bookings := service.NewBookingService(store, appointments, events, log)

	router := NewRouter(RouterDeps{
		Catalog:  NewCatalogHandler(store, log),
		Cart:     NewCartHandler(carts, log),
		Checkout: NewCheckoutHandler(checkout, log),
		Booking:  NewBookingHandler(bookings, log),
		Health:   health.NewHandler(),
		Logger:   log,
		CORS:     middleware.CORSConfig{AllowedOrigins: []string{"*"}},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, repo: repo, orders: orders}
}

func (f *fixture) do(t *testing.T, method, path, body, user string) (*nethttp.Response, map[string]any) {
	t.Helper()

	req, err := nethttp.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestCatalogEndpoints(t *testing.T) {
	f := newFixture(t)

	t.Run("lists a kind", func(t *testing.T) {
		resp, body := f.do(t, "GET", "/api/v1/catalog/product", "", "")

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.Len(t, body["data"], 2)
	})

	t.Run("gets one entry", func(t *testing.T) {
		resp, body := f.do(t, "GET", "/api/v1/catalog/service/7", "", "")

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Grooming", data["name"])
		assert.EqualValues(t, 2500, data["unit_price"])
	})

	t.Run("unknown kind is a 400", func(t *testing.T) {
		resp, body := f.do(t, "GET", "/api/v1/catalog/bogus", "", "")

		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", errorCode(body))
	})

	t.Run("unknown entry is a 404", func(t *testing.T) {
		resp, _ := f.do(t, "GET", "/api/v1/catalog/product/999", "", "")

		assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})

	t.Run("refresh reloads the kind", func(t *testing.T) {
		resp, _ := f.do(t, "POST", "/api/v1/catalog/product/refresh", "", "")

		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	})
}

func TestCartEndpoints(t *testing.T) {
	t.Run("requires identity", func(t *testing.T) {
		f := newFixture(t)
		resp, body := f.do(t, "GET", "/api/v1/cart", "", "")

		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", errorCode(body))
	})

	t.Run("add then read a cart", func(t *testing.T) {
		f := newFixture(t)

		resp, _ := f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "product", "item_id": "1", "quantity": 2}`, "user-1")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)

		resp, body := f.do(t, "GET", "/api/v1/cart", "", "user-1")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		summary := data["summary"].(map[string]any)
		assert.EqualValues(t, 3998, summary["total"])
		assert.Len(t, summary["lines"], 1)
	})

	t.Run("add validates the payload", func(t *testing.T) {
		f := newFixture(t)

		resp, body := f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "pony", "item_id": "1", "quantity": 2}`, "user-1")

		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
	})

	t.Run("update quantity floors at the current line", func(t *testing.T) {
		f := newFixture(t)
		f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "product", "item_id": "1", "quantity": 2}`, "user-1")

		resp, body := f.do(t, "PUT", "/api/v1/cart/items/product/1",
			`{"quantity": 0}`, "user-1")

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		summary := data["summary"].(map[string]any)
		lines := summary["lines"].([]any)
		require.Len(t, lines, 1)
		assert.EqualValues(t, 2, lines[0].(map[string]any)["quantity"])
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "product", "item_id": "1", "quantity": 1}`, "user-1")

		resp, _ := f.do(t, "DELETE", "/api/v1/cart/items/product/1", "", "user-1")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)

		resp, body := f.do(t, "DELETE", "/api/v1/cart/items/product/1", "", "user-1")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		summary := data["summary"].(map[string]any)
		assert.Empty(t, summary["lines"])
	})

	t.Run("clear empties the cart", func(t *testing.T) {
		f := newFixture(t)
		f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "product", "item_id": "1", "quantity": 1}`, "user-1")

		resp, _ := f.do(t, "DELETE", "/api/v1/cart", "", "user-1")
		assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)
	})
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("empty cart is a 422", func(t *testing.T) {
		f := newFixture(t)

		resp, body := f.do(t, "POST", "/api/v1/checkout", "{}", "user-1")

		assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "EMPTY_CART", errorCode(body))
	})

	t.Run("successful checkout clears the cart", func(t *testing.T) {
		f := newFixture(t)
		f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "product", "item_id": "1", "quantity": 1}`, "user-1")

		resp, body := f.do(t, "POST", "/api/v1/checkout", "{}", "user-1")

		require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "42", data["order_id"])

		_, err := f.repo.Get(context.Background(), "user-1")
		assert.Error(t, err)
	})

	t.Run("backend failure is a 502 and the cart survives", func(t *testing.T) {
		f := newFixture(t)
		f.orders.order = nil
		f.orders.err = apperrors.OrderSubmissionFailed(errors.New("backend down"))
		f.do(t, "POST", "/api/v1/cart/items",
			`{"kind": "product", "item_id": "1", "quantity": 1}`, "user-1")

		resp, body := f.do(t, "POST", "/api/v1/checkout", "{}", "user-1")

		assert.Equal(t, nethttp.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "ORDER_SUBMISSION_FAILED", errorCode(body))

		cart, err := f.repo.Get(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Len(t, cart.Lines, 1)
	})
}

func TestAppointmentEndpoint(t *testing.T) {
	f := newFixture(t)
	future := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	t.Run("books a service", func(t *testing.T) {
		resp, body := f.do(t, "POST", "/api/v1/appointments",
			`{"service_id": "7", "appointment_time": "`+future+`"}`, "user-1")

		require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "pending", data["status"])
	})

	t.Run("rejects a malformed timestamp", func(t *testing.T) {
		resp, body := f.do(t, "POST", "/api/v1/appointments",
			`{"service_id": "7", "appointment_time": "tomorrow"}`, "user-1")

		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", errorCode(body))
	})
}
