// Package manualcreate обрабатывает запись платежа наличными или переводом.
package manualcreate

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

// Service определяет интерфейс записи платежа.
type Service interface {
	Create(ctx context.Context, actor models.Actor, req models.ManualPaymentRequest) (*models.Payment, error)
}

// Handler обрабатывает запросы записи платежа.
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
// @Summary Записать платеж
// @Description Записывает оплату курса или урока наличными либо переводом
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.ManualPaymentRequest true "Данные платежа"
// @Success 201 {object} models.Payment "Созданный платеж"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 404 {object} response.ErrorResponse "Курс или урок не найден"
// @Router /payments [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.manualcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	var req models.ManualPaymentRequest
	if err := request.Decode(r, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	p, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("payment recorded", slog.Int64("payment_id", p.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}
