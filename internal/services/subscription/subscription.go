// Package subscription реализует переключение подписки пользователя на курс.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// Repository описывает контракт хранилища подписок.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetSubscription(ctx context.Context, userID, courseID int64) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, userID, courseID int64) (int64, error)
	DeleteSubscription(ctx context.Context, id int64) error
}

// Service реализует переключатель подписки.
type Service struct {
	repo    Repository
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New создаёт сервис подписок.
func New(repo Repository, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, log: log, metrics: m}
}

// Toggle удаляет подписку, если она есть, иначе создаёт её.
// Конкурентное создание той же подписки возвращает ошибку конфликта.
func (s *Service) Toggle(ctx context.Context, actor models.Actor, req models.ToggleRequest) (models.ToggleAction, error) {
	const op = "services.subscription.Toggle"
	log := s.log.With(slog.String("op", op), slog.Int64("user_id", actor.UserID))

	if req.CourseID == nil || *req.CourseID <= 0 {
		return "", apperr.Validation("course_id is required")
	}
	courseID := *req.CourseID

	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("course not found")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.repo.GetSubscription(ctx, actor.UserID, courseID)
	switch {
	case err == nil:
		if err := s.repo.DeleteSubscription(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		s.metrics.SubscriptionToggles.WithLabelValues(string(models.SubscriptionRemoved)).Inc()
		log.Info("subscription removed", slog.Int64("course_id", courseID))
		return models.SubscriptionRemoved, nil
	case errors.Is(err, repository.ErrNotFound):
	default:
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.CreateSubscription(ctx, actor.UserID, courseID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("concurrent subscription toggle", slog.Int64("course_id", courseID))
			return "", apperr.Conflict("subscription changed concurrently, retry", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("course not found")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.SubscriptionToggles.WithLabelValues(string(models.SubscriptionAdded)).Inc()
	log.Info("subscription added", slog.Int64("course_id", courseID))
	return models.SubscriptionAdded, nil
}
