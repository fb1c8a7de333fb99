package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vetty/storefront/internal/backend"
	"github.com/vetty/storefront/internal/domain"
	"github.com/vetty/storefront/internal/event"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/logger"
)

// AppointmentCreator books service appointments with the commerce backend.
type AppointmentCreator interface {
	CreateServiceRequest(ctx context.Context, serviceID string, appointmentTime time.Time, authToken string) (*backend.ServiceRequest, error)
}

// BookingService handles service appointment requests. A booking is validated
// against the service catalog before it is forwarded to the backend.
type BookingService struct {
	catalog domain.EntryLookup
	backend AppointmentCreator
	events  *event.Publisher
	logger  *slog.Logger
}

// NewBookingService creates a booking service.
func NewBookingService(catalog domain.EntryLookup, appointments AppointmentCreator, events *event.Publisher, log *slog.Logger) *BookingService {
	return &BookingService{
		catalog: catalog,
		backend: appointments,
		events:  events,
		logger:  log,
	}
}

// RequestAppointment books an appointment for a catalog service. The service
// must exist in the current catalog and the appointment time must be in the
// future.
func (s *BookingService) RequestAppointment(ctx context.Context, userID, serviceID string, appointmentTime time.Time, authToken string) (*backend.ServiceRequest, error) {
	if _, ok := s.catalog.GetEntry(domain.KindService, serviceID); !ok {
		return nil, apperrors.NotFound("service", serviceID)
	}
	if !appointmentTime.After(time.Now()) {
		return nil, apperrors.InvalidInput("appointment time must be in the future")
	}

	req, err := s.backend.CreateServiceRequest(ctx, serviceID, appointmentTime, authToken)
	if err != nil {
		return nil, err
	}

	s.events.AppointmentRequested(ctx, event.AppointmentRequested{
		UserID:          userID,
		RequestID:       req.ID,
		ServiceID:       req.ServiceID,
		AppointmentTime: req.AppointmentTime,
	})

	logger.WithContext(ctx, s.logger).Info("appointment requested",
		slog.String("user_id", userID),
		slog.String("service_id", serviceID),
		slog.String("request_id", req.ID))

	return req, nil
}
