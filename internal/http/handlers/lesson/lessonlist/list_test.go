package lessonlist

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListLessons(ctx context.Context, actor models.Actor, page models.Page) (models.PageResult[*models.Lesson], error) {
	args := m.Called(ctx, actor, page)
	return args.Get(0).(models.PageResult[*models.Lesson]), args.Error(1)
}

func TestLessonListHandler_ServeHTTP(t *testing.T) {
	moderator := models.Actor{UserID: 9, IsModerator: true}
	page := models.Page{Number: 1, Size: models.MaxPageSize}

	service := new(MockService)
	service.On("ListLessons", mock.Anything, moderator, page).Return(models.NewPageResult([]*models.Lesson{
		{ID: 1, Title: "a", CourseID: 1},
		{ID: 2, Title: "b", CourseID: 1},
	}, 2, page), nil).Once()
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lessons?page_size=100", nil)
	req = req.WithContext(middlewarectx.WithActor(req.Context(), moderator))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	assert.Contains(t, w.Body.String(), `"page_size":50`)
	assert.Contains(t, w.Body.String(), `"has_next":false`)
	service.AssertExpectations(t)
}

func TestLessonListHandler_BadPageSize(t *testing.T) {
	service := new(MockService)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lessons?page_size=0", nil)
	req = req.WithContext(middlewarectx.WithActor(req.Context(), models.Actor{UserID: 1}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"invalid page_size"}`, w.Body.String())
	service.AssertNotCalled(t, "ListLessons")
}
