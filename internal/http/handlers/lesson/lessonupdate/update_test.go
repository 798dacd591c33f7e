package lessonupdate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateLesson(ctx context.Context, actor models.Actor, id int64, patch models.LessonPatch) (*models.Lesson, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestLessonUpdateHandler_ServeHTTP(t *testing.T) {
	actor := models.Actor{UserID: 9, IsModerator: true}

	tests := []struct {
		name           string
		method         string
		body           string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "put moves lesson to another course",
			method: http.MethodPut,
			body:   `{"title":"t","description":"d","video_link":"https://youtube.com/v","course":2}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateLesson", mock.Anything, actor, int64(3), models.LessonPatch{
					Title:       strPtr("t"),
					Description: strPtr("d"),
					VideoLink:   strPtr("https://youtube.com/v"),
					CourseID:    int64Ptr(2),
				}).Return(&models.Lesson{ID: 3, CourseID: 2}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "patch link only",
			method: http.MethodPatch,
			body:   `{"video_link":"https://youtube.com/new"}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateLesson", mock.Anything, actor, int64(3), models.LessonPatch{
					VideoLink: strPtr("https://youtube.com/new"),
				}).Return(&models.Lesson{ID: 3, CourseID: 1}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "patch with invalid course",
			method:         http.MethodPatch,
			body:           `{"course":0}`,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field CourseID must be greater than 0"}`,
		},
		{
			name:   "patch link outside youtube",
			method: http.MethodPatch,
			body:   `{"video_link":"https://example.com/v"}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateLesson", mock.Anything, actor, int64(3), mock.Anything).
					Return(nil, apperr.Validation("video link must point to youtube.com")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"video link must point to youtube.com"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMocks(service)
			log := slog.New(slog.NewTextHandler(io.Discard, nil))

			r := chi.NewRouter()
			r.Put("/lessons/{id}", New(log, service).ServeHTTP)
			r.Patch("/lessons/{id}", NewPartial(log, service).ServeHTTP)

			req := httptest.NewRequest(tt.method, "/lessons/3", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithActor(req.Context(), actor))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			service.AssertExpectations(t)
		})
	}
}
