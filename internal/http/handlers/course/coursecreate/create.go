// Package coursecreate обрабатывает создание курса.
package coursecreate

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

// Service определяет интерфейс создания курса.
type Service interface {
	CreateCourse(ctx context.Context, actor models.Actor, in models.CourseInput) (*models.Course, error)
}

// Handler обрабатывает запросы создания курса.
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
// @Summary Создать курс
// @Description Владельцем курса становится текущий пользователь. Модераторам создание запрещено
// @Tags Courses
// @Accept  json
// @Produce  json
// @Param request body models.CourseInput true "Данные курса"
// @Success 201 {object} models.Course "Созданный курс"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /courses [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	var in models.CourseInput
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

	course, err := h.service.CreateCourse(r.Context(), actor, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("course created", slog.Int64("course_id", course.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, course)
}
