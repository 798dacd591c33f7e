package courselist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListCourses(ctx context.Context, actor models.Actor, page models.Page) (models.PageResult[*models.Course], error) {
	args := m.Called(ctx, actor, page)
	return args.Get(0).(models.PageResult[*models.Course]), args.Error(1)
}

func TestCourseListHandler_ServeHTTP(t *testing.T) {
	actor := models.Actor{UserID: 2}
	owner := int64(2)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		query          string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "second page",
			query: "?page=2&page_size=1",
			setupMocks: func(s *MockService) {
				page := models.Page{Number: 2, Size: 1}
				s.On("ListCourses", mock.Anything, actor, page).Return(models.NewPageResult([]*models.Course{{
					ID: 4, Title: "Go", Description: "d", OwnerID: &owner, CreatedAt: created, UpdatedAt: created,
				}}, 3, page), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"count":3,"page":2,"page_size":1,"has_next":true,"results":[{"id":4,"title":"Go","description":"d",` +
				`"owner":2,"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}]}`,
		},
		{
			name:  "default page",
			query: "",
			setupMocks: func(s *MockService) {
				page := models.Page{Number: 1, Size: models.DefaultPageSize}
				s.On("ListCourses", mock.Anything, actor, page).
					Return(models.NewPageResult[*models.Course](nil, 0, page), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"count":0,"page":1,"page_size":5,"has_next":false,"results":[]}`,
		},
		{
			name:           "bad page",
			query:          "?page=-1",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid page"}`,
		},
		{
			name:  "storage failure",
			query: "",
			setupMocks: func(s *MockService) {
				s.On("ListCourses", mock.Anything, actor, mock.Anything).
					Return(models.PageResult[*models.Course]{}, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMocks(service)
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courses"+tt.query, nil)
			req = req.WithContext(middlewarectx.WithActor(req.Context(), actor))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			service.AssertExpectations(t)
		})
	}
}
