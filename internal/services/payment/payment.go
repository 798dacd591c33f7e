// Package payment оформляет оплату курсов и уроков: через платёжного
// провайдера и вручную (наличные, перевод), сверяет статус оплаты
// и восстанавливает платежи по незавершённым намерениям.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/lms-platform/internal/policy"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// Repository описывает контракт хранилища, нужный платёжному сервису.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)

	CreatePayment(ctx context.Context, p *models.Payment) (int64, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
	ListPayments(ctx context.Context, f models.PaymentFilter, limit int) ([]*models.Payment, error)

	CreateIntent(ctx context.Context, in *models.PaymentIntent) error
	MarkIntentSessionCreated(ctx context.Context, key, productRef, priceRef, sessionID, sessionURL string) error
	FailIntent(ctx context.Context, key string) error
	CompleteIntent(ctx context.Context, key string, p *models.Payment) (int64, error)
	ListStaleIntents(ctx context.Context, state models.IntentState, before time.Time, limit int) ([]*models.PaymentIntent, error)
	AbandonIntents(ctx context.Context, before time.Time) (int64, error)
}

// Gateway описывает платёжного провайдера.
type Gateway interface {
	CreateProduct(ctx context.Context, name, description string) (*paymentprovider.Product, error)
	CreatePrice(ctx context.Context, productID string, amount decimal.Decimal, currency string) (*paymentprovider.Price, error)
	CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string, metadata map[string]string) (*paymentprovider.Session, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*paymentprovider.SessionStatus, error)
}

// CheckoutURLs: адреса возврата пользователя после оплаты.
type CheckoutURLs struct {
	Success string
	Cancel  string
}

const (
	// PaymentMessage: подсказка клиенту вместе со ссылкой на оплату.
	PaymentMessage = "Для оплаты перейдите по ссылке"

	maxProductDescription = 500
	sweepBatch            = 100
)

// Service: платёжный сервис.
type Service struct {
	repo     Repository
	gateway  Gateway
	currency string
	log      *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New создаёт платёжный сервис; currency: валюта цен у провайдера.
func New(repo Repository, gateway Gateway, currency string, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		currency: currency,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// target: оплачиваемый материал.
type target struct {
	productType models.ProductType
	id          int64
	name        string
	description string
}

// resolveTarget проверяет правило «ровно одно из course_id, lesson_id»
// и загружает материал.
func (s *Service) resolveTarget(ctx context.Context, courseID, lessonID *int64) (*target, error) {
	const op = "services.payment.resolveTarget"

	if (courseID == nil) == (lessonID == nil) {
		return nil, apperr.Validation("exactly one of course_id or lesson_id is required")
	}

	if courseID != nil {
		course, err := s.repo.GetCourse(ctx, *courseID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &target{
			productType: models.ProductCourse,
			id:          course.ID,
			name:        "Курс: " + course.Title,
			description: course.Description,
		}, nil
	}

	lesson, err := s.repo.GetLesson(ctx, *lessonID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &target{
		productType: models.ProductLesson,
		id:          lesson.ID,
		name:        "Урок: " + lesson.Title,
		description: lesson.Description,
	}, nil
}

// maxAmount: наибольшая сумма, помещающаяся в NUMERIC(10, 2).
var maxAmount = decimal.RequireFromString("99999999.99")

// validateAmount принимает положительные суммы не более чем с двумя
// знаками после запятой, в пределах столбца amount.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation("amount must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return apperr.Validation("amount must have at most 2 decimal places")
	}
	if amount.GreaterThan(maxAmount) {
		return apperr.Validation("amount must not exceed " + maxAmount.StringFixed(2))
	}
	return nil
}

// productDescription обрезает описание до лимита провайдера;
// пустое описание заменяется названием.
func productDescription(t *target) string {
	r := []rune(t.description)
	if len(r) == 0 {
		return t.name
	}
	if len(r) > maxProductDescription {
		r = r[:maxProductDescription]
	}
	return string(r)
}

func targetRefs(productType models.ProductType, id int64) (courseID, lessonID *int64) {
	if productType == models.ProductCourse {
		return &id, nil
	}
	return nil, &id
}

// Create записывает платёж наличными или переводом.
func (s *Service) Create(ctx context.Context, actor models.Actor, req models.ManualPaymentRequest) (*models.Payment, error) {
	const op = "services.payment.Create"
	log := s.log.With(slog.String("op", op), slog.Int64("user_id", actor.UserID))

	if err := policy.Authorize(policy.ActionCreate, policy.Collection(policy.KindPayment), actor); err != nil {
		return nil, err
	}
	method := models.PaymentMethod(req.PaymentMethod)
	if method != models.PaymentMethodCash && method != models.PaymentMethodTransfer {
		return nil, apperr.Validation("payment_method must be cash or transfer")
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	t, err := s.resolveTarget(ctx, req.CourseID, req.LessonID)
	if err != nil {
		return nil, err
	}

	courseID, lessonID := targetRefs(t.productType, t.id)
	p := &models.Payment{
		UserID:   actor.UserID,
		CourseID: courseID,
		LessonID: lessonID,
		Amount:   req.Amount,
		Method:   method,
	}
	id, err := s.repo.CreatePayment(ctx, p)
	if err != nil {
		log.Error("failed to save payment", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.PaymentsCreated.WithLabelValues(string(method)).Inc()

	created, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("manual payment recorded", slog.Int64("payment_id", id))
	return created, nil
}

// Get возвращает платёж, если actor может его видеть.
func (s *Service) Get(ctx context.Context, actor models.Actor, id int64) (*models.Payment, error) {
	const op = "services.payment.Get"

	p, err := s.repo.GetPayment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Authorize(policy.ActionRead, policy.Object(policy.KindPayment, &p.UserID), actor); err != nil {
		return nil, err
	}
	return p, nil
}

// List возвращает платежи по фильтру. Не модераторы видят только свои.
func (s *Service) List(ctx context.Context, actor models.Actor, f models.PaymentFilter) ([]*models.Payment, error) {
	const op = "services.payment.List"

	if err := policy.Authorize(policy.ActionList, policy.Collection(policy.KindPayment), actor); err != nil {
		return nil, err
	}
	if scope := policy.Scope(actor); scope != nil {
		f.UserID = scope
	}
	if f.Method != nil && !f.Method.Valid() {
		return nil, apperr.Validation("unknown payment_method")
	}
	res, err := s.repo.ListPayments(ctx, f, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res == nil {
		res = []*models.Payment{}
	}
	return res, nil
}
