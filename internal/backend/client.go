package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/vetty/storefront/internal/domain"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/httpclient"
	"github.com/vetty/storefront/pkg/logger"
)

// Doer executes HTTP requests. Both httpclient.Client and the circuit
// breaker wrapper satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the commerce backend. The backend speaks JSON with float
// dollar amounts; this client converts to and from integer cents so no float
// money ever crosses into the rest of the process.
type Client struct {
	baseURL string
	http    Doer
	logger  *slog.Logger
}

// NewClient creates a backend client. baseURL must not have a trailing slash.
func NewClient(baseURL string, doer Doer, log *slog.Logger) *Client {
	return &Client{baseURL: baseURL, http: doer, logger: log}
}

// productRecord mirrors the backend's product shape.
type productRecord struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stock_quantity"`
}

// serviceRecord mirrors the backend's service shape.
type serviceRecord struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Duration    string  `json:"duration"`
}

// DollarsToCents converts a float dollar amount to integer cents, rounding
// half away from zero to absorb float representation error.
func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// CentsToDollars converts integer cents to a float dollar amount for the
// backend wire format.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// FetchCatalog retrieves all entries of one kind. It satisfies
// catalog.Fetcher.
func (c *Client) FetchCatalog(ctx context.Context, kind domain.ItemKind) ([]domain.CatalogEntry, error) {
	var path string
	switch kind {
	case domain.KindProduct:
		path = "/products"
	case domain.KindService:
		path = "/services"
	default:
		return nil, apperrors.InvalidInput("unknown item kind: " + string(kind))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "backend")
	}

	switch kind {
	case domain.KindProduct:
		var records []productRecord
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		entries := make([]domain.CatalogEntry, len(records))
		for i, r := range records {
			entries[i] = domain.CatalogEntry{
				ID:            fmt.Sprintf("%d", r.ID),
				Kind:          domain.KindProduct,
				Name:          r.Name,
				UnitPrice:     DollarsToCents(r.Price),
				Description:   r.Description,
				ImageURL:      r.ImageURL,
				Category:      r.Category,
				StockQuantity: r.StockQuantity,
			}
		}
		return entries, nil
	default:
		var records []serviceRecord
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode services: %w", err)
		}
		entries := make([]domain.CatalogEntry, len(records))
		for i, r := range records {
			entries[i] = domain.CatalogEntry{
				ID:          fmt.Sprintf("%d", r.ID),
				Kind:        domain.KindService,
				Name:        r.Name,
				UnitPrice:   DollarsToCents(r.Price),
				Description: r.Description,
				ImageURL:    r.ImageURL,
				Duration:    r.Duration,
			}
		}
		return entries, nil
	}
}

// orderItemPayload is one order line in the backend wire format. Product and
// service lines carry their id under different keys.
type orderItemPayload struct {
	ProductID string  `json:"product_id,omitempty"`
	ServiceID string  `json:"service_id,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type orderPayload struct {
	Items      []orderItemPayload `json:"items"`
	TotalPrice float64            `json:"total_price"`
}

type orderConfirmation struct {
	ID        int       `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is the backend's confirmation of a created order.
type Order struct {
	ID        string
	Status    string
	CreatedAt time.Time
}

// CreateOrder submits an order to the backend and returns its confirmation.
// The caller's auth token is forwarded as a bearer token. Any failure means
// the order was not confirmed; the caller must not clear the cart.
func (c *Client) CreateOrder(ctx context.Context, order *domain.OrderRequest, authToken string) (*Order, error) {
	payload := orderPayload{
		Items:      make([]orderItemPayload, len(order.Items)),
		TotalPrice: CentsToDollars(order.Total),
	}
	for i, item := range order.Items {
		p := orderItemPayload{
			Quantity:  item.Quantity,
			UnitPrice: CentsToDollars(item.UnitPrice),
		}
		switch item.Kind {
		case domain.KindService:
			p.ServiceID = item.ItemID
		default:
			p.ProductID = item.ItemID
		}
		payload.Items[i] = p
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.OrderSubmissionFailed(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		parseErr := httpclient.ParseResponseError(resp, "backend")
		if httpclient.IsClientError(resp.StatusCode) {
			return nil, parseErr
		}
		return nil, apperrors.OrderSubmissionFailed(parseErr)
	}

	var conf orderConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return nil, apperrors.OrderSubmissionFailed(fmt.Errorf("decode order confirmation: %w", err))
	}

	logger.WithContext(ctx, c.logger).Info("order confirmed by backend",
		slog.Int("order_id", conf.ID),
		slog.String("status", conf.Status))

	return &Order{
		ID:        fmt.Sprintf("%d", conf.ID),
		Status:    conf.Status,
		CreatedAt: conf.CreatedAt,
	}, nil
}

type serviceRequestPayload struct {
	ServiceID       string `json:"service_id"`
	AppointmentTime string `json:"appointment_time"`
}

type serviceRequestConfirmation struct {
	ID              int    `json:"id"`
	ServiceID       int    `json:"service_id"`
	AppointmentTime string `json:"appointment_time"`
	Status          string `json:"status"`
}

// ServiceRequest is the backend's confirmation of a booked appointment.
type ServiceRequest struct {
	ID              string
	ServiceID       string
	AppointmentTime time.Time
	Status          string
}

// CreateServiceRequest books a service appointment with the backend.
func (c *Client) CreateServiceRequest(ctx context.Context, serviceID string, appointmentTime time.Time, authToken string) (*ServiceRequest, error) {
	body, err := json.Marshal(serviceRequestPayload{
		ServiceID:       serviceID,
		AppointmentTime: appointmentTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal service request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/service_requests", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w: %v", apperrors.ErrServiceUnavail, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "backend")
	}

	var conf serviceRequestConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return nil, fmt.Errorf("decode service request confirmation: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, conf.AppointmentTime)
	if err != nil {
		parsed = appointmentTime
	}

	return &ServiceRequest{
		ID:              fmt.Sprintf("%d", conf.ID),
		ServiceID:       fmt.Sprintf("%d", conf.ServiceID),
		AppointmentTime: parsed,
		Status:          conf.Status,
	}, nil
}
