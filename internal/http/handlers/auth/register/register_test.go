package register

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"email":"new@example.com","password":"secret","first_name":"Ann","city":"Kazan"}`,
			setupMocks: func(s *MockService) {
				s.On("Register", mock.Anything, models.RegisterRequest{
					Email: "new@example.com", Password: "secret", FirstName: "Ann", City: "Kazan",
				}).Return(&models.User{ID: 1, Email: "new@example.com", FirstName: "Ann", City: "Kazan", PasswordHash: "h"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":1,"email":"new@example.com","first_name":"Ann","city":"Kazan"}`,
		},
		{
			name:           "invalid JSON",
			body:           `not a json`,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "bad email and short password",
			body:           `{"email":"nope","password":"123"}`,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Email must be a valid email, field Password must be at least 5 characters"}`,
		},
		{
			name: "email taken",
			body: `{"email":"old@example.com","password":"secret"}`,
			setupMocks: func(s *MockService) {
				s.On("Register", mock.Anything, mock.Anything).
					Return(nil, apperr.Validation("user with this email already exists")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"user with this email already exists"}`,
		},
		{
			name: "storage failure",
			body: `{"email":"new@example.com","password":"secret"}`,
			setupMocks: func(s *MockService) {
				s.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMocks(service)
			handler := New(newNoopLogger(), service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			service.AssertExpectations(t)
		})
	}
}
