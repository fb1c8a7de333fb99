package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/vetty/storefront/internal/domain"
	"github.com/vetty/storefront/pkg/kafka"
	"github.com/vetty/storefront/pkg/logger"
)

const source = "storefront"

// Topics published by the storefront.
const (
	TopicCartUpdated          = "storefront.cart.updated"
	TopicCartCleared          = "storefront.cart.cleared"
	TopicOrderSubmitted       = "storefront.order.submitted"
	TopicAppointmentRequested = "storefront.appointment.requested"
)

// Event type names carried in the envelope.
const (
	TypeCartUpdated          = "cart.updated"
	TypeCartCleared          = "cart.cleared"
	TypeOrderSubmitted       = "order.submitted"
	TypeAppointmentRequested = "appointment.requested"
)

// CartUpdated is the payload for cart mutation events.
type CartUpdated struct {
	UserID    string            `json:"user_id"`
	Action    string            `json:"action"` // add, update, remove
	Lines     []domain.CartLine `json:"lines"`
	LineCount int               `json:"line_count"`
	Version   int               `json:"version"`
}

// CartCleared is the payload for cart clearing events.
type CartCleared struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"` // checkout, user
}

// OrderSubmitted is the payload for confirmed order handoffs.
type OrderSubmitted struct {
	UserID  string             `json:"user_id"`
	OrderID string             `json:"order_id"`
	Items   []domain.OrderItem `json:"items"`
	Total   int64              `json:"total"` // cents
}

// AppointmentRequested is the payload for service booking events.
type AppointmentRequested struct {
	UserID          string    `json:"user_id"`
	RequestID       string    `json:"request_id"`
	ServiceID       string    `json:"service_id"`
	AppointmentTime time.Time `json:"appointment_time"`
}

// Publisher sends storefront domain events to Kafka. Publishing is best
// effort: failures are logged and never surfaced to the caller, so a broker
// outage cannot fail a cart mutation or checkout.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewPublisher creates an event publisher. A nil producer disables
// publishing entirely; every publish becomes a no-op.
func NewPublisher(producer *kafka.Producer, log *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: log}
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	if p.producer == nil {
		return
	}

	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, payload)
	if err != nil {
		p.logger.Error("build event failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		p.logger.Warn("event publish failed",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

// CartUpdated publishes a cart mutation event.
func (p *Publisher) CartUpdated(ctx context.Context, payload CartUpdated) {
	p.publish(ctx, TopicCartUpdated, TypeCartUpdated, payload.UserID, "cart", payload)
}

// CartCleared publishes a cart clearing event.
func (p *Publisher) CartCleared(ctx context.Context, payload CartCleared) {
	p.publish(ctx, TopicCartCleared, TypeCartCleared, payload.UserID, "cart", payload)
}

// OrderSubmitted publishes a confirmed order handoff event.
func (p *Publisher) OrderSubmitted(ctx context.Context, payload OrderSubmitted) {
	p.publish(ctx, TopicOrderSubmitted, TypeOrderSubmitted, payload.OrderID, "order", payload)
}

// AppointmentRequested publishes a service booking event.
func (p *Publisher) AppointmentRequested(ctx context.Context, payload AppointmentRequested) {
	p.publish(ctx, TopicAppointmentRequested, TypeAppointmentRequested, payload.RequestID, "service_request", payload)
}
