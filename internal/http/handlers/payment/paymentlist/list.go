// Package paymentlist обрабатывает выборку списка платежей.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-platform/internal/http/request"
	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// Service определяет интерфейс выборки платежей.
type Service interface {
	List(ctx context.Context, actor models.Actor, f models.PaymentFilter) ([]*models.Payment, error)
}

// Handler обрабатывает запросы списка платежей.
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
// @Summary Список платежей
// @Description Модератор видит все платежи, остальные пользователи только свои
// @Tags Payments
// @Produce  json
// @Param course_id query int false "Фильтр по курсу"
// @Param lesson_id query int false "Фильтр по уроку"
// @Param payment_method query string false "cash, transfer или gateway"
// @Param ordering query string false "payment_date или -payment_date"
// @Success 200 {array} models.Payment "Платежи"
// @Failure 400 {object} response.ErrorResponse "Некорректный фильтр"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /payments [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	payments, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("list payments", slog.Int("count", len(payments)))
	render.JSON(w, r, payments)
}

func parseFilter(r *http.Request) (models.PaymentFilter, error) {
	var (
		f   models.PaymentFilter
		err error
	)
	if f.CourseID, err = request.OptionalInt64(r, "course_id"); err != nil {
		return f, err
	}
	if f.LessonID, err = request.OptionalInt64(r, "lesson_id"); err != nil {
		return f, err
	}

	q := r.URL.Query()
	if raw := q.Get("payment_method"); raw != "" {
		method := models.PaymentMethod(raw)
		f.Method = &method
	}

	switch q.Get("ordering") {
	case "", "-payment_date":
	case "payment_date":
		f.Ascending = true
	default:
		return f, apperr.Validation("ordering must be payment_date or -payment_date")
	}
	return f, nil
}
