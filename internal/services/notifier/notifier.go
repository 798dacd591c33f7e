// Package notifier рассылает подписчикам письма об обновлении курса
// не чаще одного раза за окно.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/metrics"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// Repository описывает доступ к курсам и подписчикам.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListSubscriberEmails(ctx context.Context, courseID int64) ([]string, error)
	SetCourseUpdatedAt(ctx context.Context, id int64, at time.Time) error
}

// Publisher ставит задачи в очередь рассылки.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service: уведомитель об обновлении курса.
type Service struct {
	repo    Repository
	pub     Publisher
	window  time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New создаёт уведомитель с окном window.
func New(repo Repository, pub Publisher, window time.Duration, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		pub:     pub,
		window:  window,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// NotifyCourseUpdated ставит в очередь по письму на каждую подписку курса,
// если с последней рассылки прошло больше окна, и сдвигает отметку
// updated_at на текущее время. Возвращает число поставленных задач.
// При ошибке очереди отметка не сдвигается.
func (s *Service) NotifyCourseUpdated(ctx context.Context, courseID int64) (int, error) {
	const op = "services.notifier.NotifyCourseUpdated"
	log := s.log.With(slog.String("op", op), slog.Int64("course_id", courseID))

	course, err := s.repo.GetCourse(ctx, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperr.NotFound("course not found")
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	elapsed := now.Sub(course.UpdatedAt)
	if elapsed <= s.window {
		log.Debug("notification throttled", slog.Duration("elapsed", elapsed))
		return 0, nil
	}

	emails, err := s.repo.ListSubscriberEmails(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for i, email := range emails {
		msg := models.CourseUpdatedMessage{CourseTitle: course.Title, Email: email}
		if err := s.pub.Publish(ctx, rabbitmq.RoutingKeyCourseUpdated, msg); err != nil {
			log.Error("failed to enqueue course update email", sl.Err(err), slog.Int("enqueued", i))
			return i, fmt.Errorf("%s: %w", op, err)
		}
		s.metrics.NotificationsPublished.Inc()
	}

	if err := s.repo.SetCourseUpdatedAt(ctx, courseID, now); err != nil {
		return len(emails), fmt.Errorf("%s: %w", op, err)
	}
	log.Info("course update emails enqueued", slog.Int("count", len(emails)))
	return len(emails), nil
}
