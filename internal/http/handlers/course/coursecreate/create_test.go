package coursecreate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCourse(ctx context.Context, actor models.Actor, in models.CourseInput) (*models.Course, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func TestCourseCreateHandler_ServeHTTP(t *testing.T) {
	student := models.Actor{UserID: 2}
	moderator := models.Actor{UserID: 9, IsModerator: true}
	owner := int64(2)

	tests := []struct {
		name           string
		actor          models.Actor
		body           string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "created",
			actor: student,
			body:  `{"title":"Go","description":"basics"}`,
			setupMocks: func(s *MockService) {
				s.On("CreateCourse", mock.Anything, student, models.CourseInput{Title: "Go", Description: "basics"}).
					Return(&models.Course{ID: 1, Title: "Go", Description: "basics", OwnerID: &owner}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "title required",
			actor:          student,
			body:           `{"description":"basics"}`,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Title is a required field"}`,
		},
		{
			name:  "moderators cannot create",
			actor: moderator,
			body:  `{"title":"Go","description":"basics"}`,
			setupMocks: func(s *MockService) {
				s.On("CreateCourse", mock.Anything, moderator, mock.Anything).
					Return(nil, apperr.Permission("you do not have permission to perform this action")).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"you do not have permission to perform this action"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMocks(service)
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/courses", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithActor(req.Context(), tt.actor))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			service.AssertExpectations(t)
		})
	}
}
