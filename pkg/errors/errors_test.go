package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrapping(t *testing.T) {
	err := OrderSubmissionFailed(errors.New("connection refused"))

	assert.True(t, errors.Is(err, ErrOrderSubmission))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ORDER_SUBMISSION_FAILED", appErr.Code)
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty cart", EmptyCart(), http.StatusUnprocessableEntity},
		{"unresolved lines", UnresolvedLines(), http.StatusConflict},
		{"order submission", OrderSubmissionFailed(errors.New("boom")), http.StatusBadGateway},
		{"catalog unavailable", CatalogUnavailable("product"), http.StatusServiceUnavailable},
		{"not found", NotFound("cart", "u1"), http.StatusNotFound},
		{"wrapped sentinel", fmt.Errorf("ctx: %w", ErrEmptyCart), http.StatusUnprocessableEntity},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}
