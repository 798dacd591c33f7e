// Package userlist отдаёт страницу публичных профилей.
package userlist

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
	List(ctx context.Context, actor models.Actor, page models.Page) (models.PageResult[models.UserPublic], error)
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
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы (не больше 50)"
// @Success 200 {object} models.PageResult[models.UserPublic] "Страница профилей"
// @Router /users [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	page, err := request.Page(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	result, err := h.service.List(r.Context(), actor, page)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, result)
}
