package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vetty/storefront/internal/service"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/httputil"
	"github.com/vetty/storefront/pkg/validator"
)

// BookingHandler serves service appointment requests.
type BookingHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(bookings *service.BookingService, log *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: log}
}

type appointmentRequest struct {
	ServiceID       string `json:"service_id" validate:"required"`
	AppointmentTime string `json:"appointment_time" validate:"required"`
}

type appointmentResponse struct {
	RequestID       string    `json:"request_id"`
	ServiceID       string    `json:"service_id"`
	AppointmentTime time.Time `json:"appointment_time"`
	Status          string    `json:"status"`
}

// Request handles POST /appointments.
func (h *BookingHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	when, err := time.Parse(time.RFC3339, req.AppointmentTime)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("appointment_time must be RFC 3339"), h.logger)
		return
	}

	result, err := h.bookings.RequestAppointment(r.Context(), userID(r), req.ServiceID, when, authToken(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: appointmentResponse{
		RequestID:       result.ID,
		ServiceID:       result.ServiceID,
		AppointmentTime: result.AppointmentTime,
		Status:          result.Status,
	}})
}
