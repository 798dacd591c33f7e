// Package lessonupdate обрабатывает полное (PUT) и частичное (PATCH) обновление урока.
package lessonupdate

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

// Service определяет интерфейс обновления урока.
type Service interface {
	UpdateLesson(ctx context.Context, actor models.Actor, id int64, patch models.LessonPatch) (*models.Lesson, error)
}

// Handler обрабатывает запросы обновления урока.
type Handler struct {
	log      *slog.Logger
	service  Service
	partial  bool
	validate *validator.Validate
}

// New создает обработчик PUT.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// NewPartial создает обработчик PATCH.
func NewPartial(log *slog.Logger, service Service) *Handler {
	h := New(log, service)
	h.partial = true
	return h
}

// ServeHTTP godoc
// @Summary Обновить урок
// @Description Доступно владельцу и модератору. Подписчики курса урока получают письмо с учетом окна уведомлений
// @Tags Lessons
// @Accept  json
// @Produce  json
// @Param id path int true "ID урока"
// @Param request body models.LessonPatch true "Поля урока"
// @Success 200 {object} models.Lesson "Обновленный урок"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Router /lessons/{id} [put]
// @Router /lessons/{id} [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.update"
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

	lesson, err := h.service.UpdateLesson(r.Context(), actor, id, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("lesson updated", slog.Int64("lesson_id", id))
	render.JSON(w, r, lesson)
}

func (h *Handler) decode(r *http.Request) (models.LessonPatch, error) {
	if h.partial {
		var patch models.LessonPatch
		if err := request.Decode(r, &patch); err != nil {
			return patch, err
		}
		return patch, h.validate.Struct(patch)
	}

	var in models.LessonInput
	if err := request.Decode(r, &in); err != nil {
		return models.LessonPatch{}, err
	}
	if err := h.validate.Struct(in); err != nil {
		return models.LessonPatch{}, err
	}
	return models.LessonPatch{
		Title:       &in.Title,
		Description: &in.Description,
		VideoLink:   &in.VideoLink,
		CourseID:    &in.CourseID,
	}, nil
}
