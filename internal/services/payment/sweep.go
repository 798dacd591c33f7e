package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// SweepResult: итог одного прохода по застрявшим намерениям.
type SweepResult struct {
	Recovered int
	Abandoned int64
}

// SweepIntents доводит до конца намерения, застрявшие дольше grace:
// для session_created создаётся недостающий платёж со статусом pending,
// created без сессии помечаются abandoned.
func (s *Service) SweepIntents(ctx context.Context, grace time.Duration) (SweepResult, error) {
	const op = "services.payment.SweepIntents"
	log := s.log.With(slog.String("op", op))

	var res SweepResult
	before := s.now().Add(-grace)

	stale, err := s.repo.ListStaleIntents(ctx, models.IntentSessionCreated, before, sweepBatch)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	for _, in := range stale {
		if in.SessionID == nil {
			continue
		}
		courseID, lessonID := targetRefs(in.ProductType, in.ProductID)
		p := &models.Payment{
			UserID:            in.UserID,
			CourseID:          courseID,
			LessonID:          lessonID,
			Amount:            in.Amount,
			Method:            models.PaymentMethodGateway,
			GatewayProductID:  in.ProductRef,
			GatewayPriceID:    in.PriceRef,
			GatewaySessionID:  in.SessionID,
			GatewayStatus:     models.PaymentStatusPending,
			GatewayPaymentURL: in.SessionURL,
		}
		id, err := s.repo.CompleteIntent(ctx, in.Key, p)
		switch {
		case errors.Is(err, repository.ErrConflict):
			log.Debug("intent completed concurrently", slog.String("intent", in.Key))
			continue
		case err != nil:
			s.metrics.IntentsRecovered.WithLabelValues("error").Inc()
			log.Error("failed to recover intent", slog.String("intent", in.Key), sl.Err(err))
			continue
		}
		res.Recovered++
		s.metrics.IntentsRecovered.WithLabelValues("recovered").Inc()
		log.Info("payment recovered from intent", slog.String("intent", in.Key), slog.Int64("payment_id", id))
	}

	n, err := s.repo.AbandonIntents(ctx, before)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.Abandoned = n
	if n > 0 {
		s.metrics.IntentsRecovered.WithLabelValues("abandoned").Add(float64(n))
	}
	log.Info("intent sweep finished", slog.Int("recovered", res.Recovered), slog.Int64("abandoned", n))
	return res, nil
}
