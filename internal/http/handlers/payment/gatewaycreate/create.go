// Package gatewaycreate обрабатывает создание платежа через платёжного провайдера.
package gatewaycreate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms-platform/internal/http/request"
	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/services/payment"
)

const (
	successPath = "/api/v1/payments/success/"
	cancelPath  = "/api/v1/payments/cancel/"
)

// Service определяет интерфейс для создания платежа через провайдера.
type Service interface {
	CreateGatewayPayment(ctx context.Context, actor models.Actor, req models.GatewayPaymentRequest, urls payment.CheckoutURLs) (*models.GatewayPaymentResult, error)
}

// Handler обрабатывает запросы на оплату курса или урока.
type Handler struct {
	log      *slog.Logger
	service  Service
	urls     payment.CheckoutURLs // Адреса возврата; пустые строятся от хоста запроса
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, urls payment.CheckoutURLs) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		urls:     urls,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оплатить курс или урок
// @Description Создает продукт, цену и сессию оплаты у провайдера и возвращает ссылку на оплату
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.GatewayPaymentRequest true "Курс или урок и сумма"
// @Success 201 {object} models.GatewayPaymentResult "Ссылка на оплату"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс или урок не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /payments/create-gateway-payment [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.gatewaycreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	var req models.GatewayPaymentRequest
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

	result, err := h.service.CreateGatewayPayment(r.Context(), actor, req, h.checkoutURLs(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("gateway payment created", slog.Int64("payment_id", result.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

func (h *Handler) checkoutURLs(r *http.Request) payment.CheckoutURLs {
	urls := h.urls
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if urls.Success == "" {
		urls.Success = fmt.Sprintf("%s://%s%s", scheme, r.Host, successPath)
	}
	if urls.Cancel == "" {
		urls.Cancel = fmt.Sprintf("%s://%s%s", scheme, r.Host, cancelPath)
	}
	return urls
}
