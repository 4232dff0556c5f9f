package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		kind     shared.ErrorKind
		expected int
	}{
		{shared.KindValidation, http.StatusBadRequest},
		{shared.KindNotFound, http.StatusNotFound},
		{shared.KindConflict, http.StatusConflict},
		{shared.KindStore, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.kind))
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		code       string
		messageHas string
	}{
		{
			name:       "validation keeps code and message",
			err:        shared.NewValidationError("EXCEEDS_OUTSTANDING", "Payment amount 25.00 exceeds outstanding amount 20.00"),
			status:     http.StatusBadRequest,
			code:       "EXCEEDS_OUTSTANDING",
			messageHas: "exceeds outstanding",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("load: %w", shared.NewNotFoundError("Invoice", "42")),
			status:     http.StatusNotFound,
			code:       "NOT_FOUND",
			messageHas: "Invoice 42",
		},
		{
			name:   "conflict",
			err:    shared.ErrConcurrencyConflict,
			status: http.StatusConflict,
			code:   "CONCURRENCY_CONFLICT",
		},
		{
			name:       "store error hides the cause",
			err:        shared.NewStoreError("invoice.find", errors.New("pq: password authentication failed")),
			status:     http.StatusInternalServerError,
			code:       "STORE_ERROR",
			messageHas: "unavailable",
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, message := FromError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, message, tt.messageHas)
			assert.NotContains(t, message, "password")
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "customer_id", Message: "This field is required"}}
	resp := NewValidationErrorResponse("Request validation failed", "req-1", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, details, resp.Details)
}
