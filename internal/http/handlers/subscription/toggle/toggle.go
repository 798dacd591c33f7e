// Package toggle обрабатывает подписку на курс и отписку от него.
package toggle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-platform/internal/http/request"
	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// Service определяет интерфейс переключения подписки.
type Service interface {
	Toggle(ctx context.Context, actor models.Actor, req models.ToggleRequest) (models.ToggleAction, error)
}

// Handler обрабатывает запросы переключения подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подписаться на курс или отписаться
// @Description Если подписки нет, она создается (201), иначе удаляется (200)
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.ToggleRequest true "ID курса"
// @Success 200 {object} response.MessageResponse "Подписка удалена"
// @Success 201 {object} response.MessageResponse "Подписка добавлена"
// @Failure 400 {object} response.ErrorResponse "Не передан course_id"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 409 {object} response.ErrorResponse "Параллельное изменение подписки"
// @Router /subscriptions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.toggle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	var req models.ToggleRequest
	if err := request.Decode(r, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	action, err := h.service.Toggle(r.Context(), actor, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("subscription toggled", slog.String("action", string(action)))
	if action == models.SubscriptionAdded {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, response.Message(string(action)))
}
