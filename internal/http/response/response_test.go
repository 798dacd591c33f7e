package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("op: %w", apperr.Validation("amount must be positive")),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"amount must be positive"}`,
		},
		{
			name:       "not found",
			err:        apperr.NotFound("payment not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"payment not found"}`,
		},
		{
			name:       "conflict",
			err:        apperr.Conflict("retry", errors.New("23505")),
			wantStatus: http.StatusConflict,
			wantBody:   `{"status":"Error","error":"retry"}`,
		},
		{
			name:       "gateway details are hidden",
			err:        apperr.Gateway("create_price", errors.New("secret key sk_live_1 invalid")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"Error","error":"payment provider error"}`,
		},
		{
			name:       "internal",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(w, r, newNoopLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestInvalid(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Title string `validate:"max=3"`
	}
	err := validator.New().Struct(req{Title: "long"})
	require.Error(t, err)

	w := httptest.NewRecorder()
	Invalid(w, httptest.NewRequest(http.MethodPost, "/", nil), err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"status":"Error","error":"field Email is a required field, field Title must be at most 3 characters"}`,
		w.Body.String())
}
