package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/policy"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// CreateGatewayPayment оформляет оплату через провайдера: создаёт продукт,
// цену и сессию оплаты, затем сохраняет платёж со статусом pending.
//
// До первого обращения к провайдеру пишется намерение оплаты. Оно
// проходит состояния created, session_created и completed; при ошибке
// провайдера переходит в failed, и платёж не создаётся.
func (s *Service) CreateGatewayPayment(ctx context.Context, actor models.Actor, req models.GatewayPaymentRequest, urls CheckoutURLs) (*models.GatewayPaymentResult, error) {
	const op = "services.payment.CreateGatewayPayment"
	log := s.log.With(slog.String("op", op), slog.Int64("user_id", actor.UserID))

	if err := policy.Authorize(policy.ActionCreate, policy.Collection(policy.KindPayment), actor); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	t, err := s.resolveTarget(ctx, req.CourseID, req.LessonID)
	if err != nil {
		return nil, err
	}

	intent := &models.PaymentIntent{
		Key:         uuid.NewString(),
		UserID:      actor.UserID,
		ProductType: t.productType,
		ProductID:   t.id,
		Amount:      req.Amount,
		State:       models.IntentCreated,
	}
	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log = log.With(slog.String("intent", intent.Key))

	product, err := s.gateway.CreateProduct(ctx, t.name, productDescription(t))
	if err != nil {
		return nil, s.gatewayFailed(ctx, log, intent.Key, "create_product", err)
	}
	price, err := s.gateway.CreatePrice(ctx, product.ID, req.Amount, s.currency)
	if err != nil {
		return nil, s.gatewayFailed(ctx, log, intent.Key, "create_price", err)
	}
	metadata := map[string]string{
		"user_id":      strconv.FormatInt(actor.UserID, 10),
		"user_email":   actor.Email,
		"product_type": string(t.productType),
		"product_id":   strconv.FormatInt(t.id, 10),
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, price.ID, urls.Success, urls.Cancel, metadata)
	if err != nil {
		return nil, s.gatewayFailed(ctx, log, intent.Key, "create_session", err)
	}

	if err := s.repo.MarkIntentSessionCreated(ctx, intent.Key, product.ID, price.ID, session.ID, session.URL); err != nil {
		log.Error("failed to record checkout session", sl.Err(err), slog.String("session_id", session.ID))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	courseID, lessonID := targetRefs(t.productType, t.id)
	p := &models.Payment{
		UserID:            actor.UserID,
		CourseID:          courseID,
		LessonID:          lessonID,
		Amount:            req.Amount,
		Method:            models.PaymentMethodGateway,
		GatewayProductID:  &product.ID,
		GatewayPriceID:    &price.ID,
		GatewaySessionID:  &session.ID,
		GatewayStatus:     models.PaymentStatusPending,
		GatewayPaymentURL: &session.URL,
	}
	id, err := s.repo.CompleteIntent(ctx, intent.Key, p)
	if err != nil {
		log.Error("failed to save gateway payment", sl.Err(err), slog.String("session_id", session.ID))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.PaymentsCreated.WithLabelValues(string(models.PaymentMethodGateway)).Inc()
	log.Info("gateway payment created", slog.Int64("payment_id", id), slog.String("session_id", session.ID))

	return &models.GatewayPaymentResult{
		ID:         id,
		PaymentURL: session.URL,
		Message:    PaymentMessage,
	}, nil
}

func (s *Service) gatewayFailed(ctx context.Context, log *slog.Logger, key, operation string, err error) error {
	s.metrics.GatewayErrors.WithLabelValues(operation).Inc()
	log.Error("payment gateway call failed", slog.String("operation", operation), sl.Err(err))
	if ferr := s.repo.FailIntent(ctx, key); ferr != nil {
		log.Error("failed to mark intent failed", sl.Err(ferr))
	}
	if apperr.Is(err, apperr.KindGateway) {
		return err
	}
	return apperr.Gateway(operation, err)
}

// CheckStatus запрашивает у провайдера статус оплаты и сохраняет его
// в платеже. Повторный вызов только перезаписывает статус.
func (s *Service) CheckStatus(ctx context.Context, actor models.Actor, id int64) (*models.PaymentStatus, error) {
	const op = "services.payment.CheckStatus"
	log := s.log.With(slog.String("op", op), slog.Int64("payment_id", id))

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
	if p.GatewaySessionID == nil || *p.GatewaySessionID == "" {
		return nil, apperr.Validation("payment has no gateway session")
	}

	st, err := s.gateway.GetSessionStatus(ctx, *p.GatewaySessionID)
	if err != nil {
		s.metrics.GatewayErrors.WithLabelValues("get_session").Inc()
		log.Error("failed to fetch session status", sl.Err(err))
		if apperr.Is(err, apperr.KindGateway) {
			return nil, err
		}
		return nil, apperr.Gateway("get_session", err)
	}

	if err := s.repo.UpdatePaymentStatus(ctx, p.ID, st.Status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("payment status reconciled", slog.String("status", st.Status))

	return &models.PaymentStatus{
		PaymentID:     p.ID,
		SessionID:     st.ID,
		Status:        st.Status,
		Paid:          st.Paid,
		AmountTotal:   st.AmountTotal,
		Currency:      st.Currency,
		CustomerEmail: st.CustomerEmail,
	}, nil
}
