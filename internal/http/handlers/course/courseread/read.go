// Package courseread обрабатывает получение карточки курса.
package courseread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-platform/internal/http/request"
	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type Service interface {
	GetCourse(ctx context.Context, actor models.Actor, id int64) (*models.CourseDetail, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить курс
// @Description Возвращает курс с уроками, их количеством и признаком подписки текущего пользователя
// @Tags Courses
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} models.CourseDetail "Карточка курса"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	id, err := request.IDParam(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	detail, err := h.service.GetCourse(r.Context(), actor, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, detail)
}
