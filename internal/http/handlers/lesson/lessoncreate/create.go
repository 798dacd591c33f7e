// Package lessoncreate обрабатывает создание урока.
package lessoncreate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms-platform/internal/http/request"
	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// Service определяет интерфейс создания урока.
type Service interface {
	CreateLesson(ctx context.Context, actor models.Actor, in models.LessonInput) (*models.Lesson, error)
}

// Handler обрабатывает запросы создания урока.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать урок
// @Description Курс должен существовать, ссылка на видео должна вести на youtube.com
// @Tags Lessons
// @Accept  json
// @Produce  json
// @Param request body models.LessonInput true "Данные урока"
// @Success 201 {object} models.Lesson "Созданный урок"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /lessons [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	var in models.LessonInput
	if err := request.Decode(r, &in); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(in); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), actor, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("lesson created", slog.Int64("lesson_id", lesson.ID), slog.Int64("course_id", lesson.CourseID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, lesson)
}
