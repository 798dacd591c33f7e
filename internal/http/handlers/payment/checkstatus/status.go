// Package checkstatus обрабатывает сверку статуса платежа с провайдером.
package checkstatus

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

// Service определяет интерфейс сверки платежа.
type Service interface {
	CheckStatus(ctx context.Context, actor models.Actor, id int64) (*models.PaymentStatus, error)
}

// Handler обрабатывает запросы статуса платежа.
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
// @Summary Проверить статус платежа
// @Description Запрашивает у провайдера статус сессии оплаты и сохраняет его в платеже
// @Tags Payments
// @Produce  json
// @Param id path int true "ID платежа"
// @Success 200 {object} models.PaymentStatus "Статус платежа"
// @Failure 400 {object} response.ErrorResponse "Платеж не создавался через провайдера"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Платеж не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /payments/{id}/check-status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkstatus"
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

	status, err := h.service.CheckStatus(r.Context(), actor, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("payment status checked", slog.Int64("payment_id", id), slog.String("status", status.Status))
	render.JSON(w, r, status)
}
