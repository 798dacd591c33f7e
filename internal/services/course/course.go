// Package course реализует работу с курсами и уроками: права доступа,
// кеш карточки курса и уведомление подписчиков после изменений.
package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms-platform/internal/cache"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/policy"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// Repository описывает контракт хранилища курсов и уроков.
type Repository interface {
	CreateCourse(ctx context.Context, in models.CourseInput, ownerID int64) (*models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Course, int, error)
	UpdateCourse(ctx context.Context, id int64, patch models.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	CreateLesson(ctx context.Context, in models.LessonInput, ownerID int64) (*models.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	ListLessons(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Lesson, int, error)
	ListCourseLessons(ctx context.Context, courseID int64) ([]*models.Lesson, error)
	UpdateLesson(ctx context.Context, id int64, patch models.LessonPatch) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error

	IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error)
}

// Cache описывает кеш карточек курсов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Notifier уведомляет подписчиков об обновлении курса.
type Notifier interface {
	NotifyCourseUpdated(ctx context.Context, courseID int64) (int, error)
}

// Service: сервис курсов и уроков.
type Service struct {
	repo     Repository
	cache    Cache
	notifier Notifier
	log      *slog.Logger
}

// New создаёт сервис курсов.
func New(repo Repository, c Cache, n Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, notifier: n, log: log}
}

// courseCard: кешируемая часть карточки курса. Признак подписки
// зависит от пользователя и в кеш не попадает.
type courseCard struct {
	Course  models.Course    `json:"course"`
	Lessons []*models.Lesson `json:"lessons"`
}

func (s *Service) loadCard(ctx context.Context, id int64) (*courseCard, error) {
	const op = "services.course.loadCard"
	log := s.log.With(slog.String("op", op), slog.Int64("course_id", id))

	key := cache.CourseKey(id)
	var card courseCard
	found, err := s.cache.Get(ctx, key, &card)
	if err != nil {
		log.Warn("course cache read failed", sl.Err(err))
	}
	if found {
		return &card, nil
	}

	course, err := s.repo.GetCourse(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lessons, err := s.repo.ListCourseLessons(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lessons == nil {
		lessons = []*models.Lesson{}
	}
	card = courseCard{Course: *course, Lessons: lessons}
	if err := s.cache.Set(ctx, key, card); err != nil {
		log.Warn("course cache write failed", sl.Err(err))
	}
	return &card, nil
}

func (s *Service) invalidate(ctx context.Context, courseIDs ...int64) {
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, cache.CourseKey(id))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("course cache invalidation failed", slog.Any("keys", keys), sl.Err(err))
	}
}

// notify запускает рассылку после уже сохранённого изменения;
// ошибка рассылки не отменяет изменение. Рассылка может сдвинуть updated_at,
// поэтому кеш карточки сбрасывается после неё.
func (s *Service) notify(ctx context.Context, courseID int64) {
	if _, err := s.notifier.NotifyCourseUpdated(ctx, courseID); err != nil {
		s.log.Error("course update notification failed", slog.Int64("course_id", courseID), sl.Err(err))
	}
}

// ListCourses возвращает страницу курсов: модератору все, остальным свои.
func (s *Service) ListCourses(ctx context.Context, actor models.Actor, page models.Page) (models.PageResult[*models.Course], error) {
	const op = "services.course.ListCourses"

	if err := policy.Authorize(policy.ActionList, policy.Collection(policy.KindCourse), actor); err != nil {
		return models.PageResult[*models.Course]{}, err
	}
	items, total, err := s.repo.ListCourses(ctx, policy.Scope(actor), page)
	if err != nil {
		return models.PageResult[*models.Course]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPageResult(items, total, page), nil
}

// CreateCourse создаёт курс, владельцем становится actor.
func (s *Service) CreateCourse(ctx context.Context, actor models.Actor, in models.CourseInput) (*models.Course, error) {
	const op = "services.course.CreateCourse"

	if err := policy.Authorize(policy.ActionCreate, policy.Collection(policy.KindCourse), actor); err != nil {
		return nil, err
	}
	c, err := s.repo.CreateCourse(ctx, in, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("course created", slog.String("op", op), slog.Int64("course_id", c.ID))
	return c, nil
}

// GetCourse возвращает карточку курса с уроками и признаком подписки actor.
func (s *Service) GetCourse(ctx context.Context, actor models.Actor, id int64) (*models.CourseDetail, error) {
	const op = "services.course.GetCourse"

	card, err := s.loadCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(policy.ActionRead, policy.Object(policy.KindCourse, card.Course.OwnerID), actor); err != nil {
		return nil, err
	}
	subscribed, err := s.repo.IsSubscribed(ctx, actor.UserID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CourseDetail{
		Course:       card.Course,
		LessonsCount: len(card.Lessons),
		Lessons:      card.Lessons,
		IsSubscribed: subscribed,
	}, nil
}

func (s *Service) courseForAction(ctx context.Context, op string, action policy.Action, actor models.Actor, id int64) (*models.Course, error) {
	c, err := s.repo.GetCourse(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Authorize(action, policy.Object(policy.KindCourse, c.OwnerID), actor); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCourse меняет курс и уведомляет подписчиков.
func (s *Service) UpdateCourse(ctx context.Context, actor models.Actor, id int64, patch models.CoursePatch) (*models.Course, error) {
	const op = "services.course.UpdateCourse"

	if _, err := s.courseForAction(ctx, op, policy.ActionUpdate, actor, id); err != nil {
		return nil, err
	}
	c, err := s.repo.UpdateCourse(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.notify(ctx, id)
	s.invalidate(ctx, id)
	return c, nil
}

// DeleteCourse удаляет курс вместе с уроками.
func (s *Service) DeleteCourse(ctx context.Context, actor models.Actor, id int64) error {
	const op = "services.course.DeleteCourse"

	if _, err := s.courseForAction(ctx, op, policy.ActionDelete, actor, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("course not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("course deleted", slog.String("op", op), slog.Int64("course_id", id))
	return nil
}
