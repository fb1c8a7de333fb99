package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vetty/storefront/internal/backend"
	"github.com/vetty/storefront/internal/event"
	apperrors "github.com/vetty/storefront/pkg/errors"
	"github.com/vetty/storefront/pkg/logger"
)

type mockAppointmentCreator struct {
	mock.Mock
}

func (m *mockAppointmentCreator) CreateServiceRequest(ctx context.Context, serviceID string, appointmentTime time.Time, authToken string) (*backend.ServiceRequest, error) {
	args := m.Called(ctx, serviceID, appointmentTime, authToken)
	if r := args.Get(0); r != nil {
		return r.(*backend.ServiceRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func newBookingFixture() (*BookingService, *mockAppointmentCreator) {
	log := logger.New("test", "error")
	appointments := new(mockAppointmentCreator)
	svc := NewBookingService(testCatalog(), appointments, event.NewPublisher(nil, log), log)
	return svc, appointments
}

func TestBookingRequestAppointment(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(48 * time.Hour)

	t.Run("books a known service", func(t *testing.T) {
		svc, appointments := newBookingFixture()

		appointments.On("CreateServiceRequest", mock.Anything, "7", future, "tok").
			Return(&backend.ServiceRequest{
				ID: "5", ServiceID: "7", AppointmentTime: future, Status: "pending",
			}, nil)

		req, err := svc.RequestAppointment(ctx, "user-1", "7", future, "tok")

		require.NoError(t, err)
		assert.Equal(t, "pending", req.Status)
		appointments.AssertExpectations(t)
	})

	t.Run("rejects an unknown service", func(t *testing.T) {
		svc, appointments := newBookingFixture()

		_, err := svc.RequestAppointment(ctx, "user-1", "999", future, "")

		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		appointments.AssertNotCalled(t, "CreateServiceRequest",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a past appointment time", func(t *testing.T) {
		svc, appointments := newBookingFixture()

		_, err := svc.RequestAppointment(ctx, "user-1", "7", time.Now().Add(-time.Hour), "")

		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		appointments.AssertNotCalled(t, "CreateServiceRequest",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backend failure is surfaced", func(t *testing.T) {
		svc, appointments := newBookingFixture()

		appointments.On("CreateServiceRequest", mock.Anything, "7", future, "").
			Return(nil, errors.New("backend down"))

		_, err := svc.RequestAppointment(ctx, "user-1", "7", future, "")

		assert.Error(t, err)
	})
}
