// Package courseupdate обрабатывает полное (PUT) и частичное (PATCH) обновление курса.
package courseupdate

import (
	"context"
	"errors"
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

// Service определяет интерфейс обновления курса.
type Service interface {
	UpdateCourse(ctx context.Context, actor models.Actor, id int64, patch models.CoursePatch) (*models.Course, error)
}

// Handler обрабатывает запросы обновления курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	partial  bool
	validate *validator.Validate
}

// New создает обработчик PUT: все поля курса обязательны.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// NewPartial создает обработчик PATCH: меняются только переданные поля.
func NewPartial(log *slog.Logger, service Service) *Handler {
	h := New(log, service)
	h.partial = true
	return h
}

// ServeHTTP godoc
// @Summary Обновить курс
// @Description Доступно владельцу и модератору. Подписчики получают письмо, если с прошлой рассылки прошло больше окна уведомлений
// @Tags Courses
// @Accept  json
// @Produce  json
// @Param id path int true "ID курса"
// @Param request body models.CoursePatch true "Поля курса"
// @Success 200 {object} models.Course "Обновленный курс"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [put]
// @Router /courses/{id} [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.update"
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

	patch, err := h.decode(r)
	if err != nil {
		log.Warn("invalid request", sl.Err(err))
		if errors.Is(err, request.ErrInvalidBody) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		response.Invalid(w, r, err)
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), actor, id, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("course updated", slog.Int64("course_id", id))
	render.JSON(w, r, course)
}

func (h *Handler) decode(r *http.Request) (models.CoursePatch, error) {
	if h.partial {
		var patch models.CoursePatch
		if err := request.Decode(r, &patch); err != nil {
			return patch, err
		}
		return patch, h.validate.Struct(patch)
	}

	var in models.CourseInput
	if err := request.Decode(r, &in); err != nil {
		return models.CoursePatch{}, err
	}
	if err := h.validate.Struct(in); err != nil {
		return models.CoursePatch{}, err
	}
	return models.CoursePatch{Title: &in.Title, Description: &in.Description}, nil
}
