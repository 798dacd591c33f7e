// Package courseremove обрабатывает удаление курса.
package courseremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/lms-platform/internal/http/request"
	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type Service interface {
	DeleteCourse(ctx context.Context, actor models.Actor, id int64) error
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
// @Summary Удалить курс
// @Description Доступно только владельцу
// @Tags Courses
// @Param id path int true "ID курса"
// @Success 204 "Курс удален"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.remove"
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

	if err := h.service.DeleteCourse(r.Context(), actor, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("course deleted", slog.Int64("course_id", id))
	w.WriteHeader(http.StatusNoContent)
}
