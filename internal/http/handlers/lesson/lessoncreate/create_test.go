package lessoncreate

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

func (m *MockService) CreateLesson(ctx context.Context, actor models.Actor, in models.LessonInput) (*models.Lesson, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func TestLessonCreateHandler_ServeHTTP(t *testing.T) {
	actor := models.Actor{UserID: 2}
	valid := models.LessonInput{
		Title: "intro", Description: "first", VideoLink: "https://www.youtube.com/watch?v=abc", CourseID: 1,
	}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "created",
			body: `{"title":"intro","description":"first","video_link":"https://www.youtube.com/watch?v=abc","course":1}`,
			setupMocks: func(s *MockService) {
				s.On("CreateLesson", mock.Anything, actor, valid).
					Return(&models.Lesson{ID: 3, Title: "intro", CourseID: 1, VideoLink: valid.VideoLink}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "link is not a url",
			body:           `{"title":"intro","description":"first","video_link":"youtube","course":1}`,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field VideoLink must be a valid url"}`,
		},
		{
			name: "link outside youtube",
			body: `{"title":"intro","description":"first","video_link":"https://vimeo.com/1","course":1}`,
			setupMocks: func(s *MockService) {
				s.On("CreateLesson", mock.Anything, actor, mock.Anything).
					Return(nil, apperr.Validation("video link must point to youtube.com")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"video link must point to youtube.com"}`,
		},
		{
			name: "course does not exist",
			body: `{"title":"intro","description":"first","video_link":"https://youtube.com/x","course":99}`,
			setupMocks: func(s *MockService) {
				s.On("CreateLesson", mock.Anything, actor, mock.Anything).
					Return(nil, apperr.Validation("course does not exist")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"course does not exist"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMocks(service)
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/lessons", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithActor(req.Context(), actor))
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
