package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/lib/videolink"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/policy"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

const errVideoLink = "video link must point to youtube.com"

func (s *Service) ensureCourseExists(ctx context.Context, op string, courseID int64) error {
	_, err := s.repo.GetCourse(ctx, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("course does not exist")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListLessons возвращает страницу уроков: модератору все, остальным свои.
func (s *Service) ListLessons(ctx context.Context, actor models.Actor, page models.Page) (models.PageResult[*models.Lesson], error) {
	const op = "services.course.ListLessons"

	if err := policy.Authorize(policy.ActionList, policy.Collection(policy.KindLesson), actor); err != nil {
		return models.PageResult[*models.Lesson]{}, err
	}
	items, total, err := s.repo.ListLessons(ctx, policy.Scope(actor), page)
	if err != nil {
		return models.PageResult[*models.Lesson]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPageResult(items, total, page), nil
}

// CreateLesson создаёт урок в существующем курсе.
func (s *Service) CreateLesson(ctx context.Context, actor models.Actor, in models.LessonInput) (*models.Lesson, error) {
	const op = "services.course.CreateLesson"

	if err := policy.Authorize(policy.ActionCreate, policy.Collection(policy.KindLesson), actor); err != nil {
		return nil, err
	}
	if !videolink.Valid(in.VideoLink) {
		return nil, apperr.Validation(errVideoLink)
	}
	if err := s.ensureCourseExists(ctx, op, in.CourseID); err != nil {
		return nil, err
	}

	l, err := s.repo.CreateLesson(ctx, in, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation("course does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, l.CourseID)
	s.log.Info("lesson created", slog.String("op", op), slog.Int64("lesson_id", l.ID))
	return l, nil
}

func (s *Service) lessonForAction(ctx context.Context, op string, action policy.Action, actor models.Actor, id int64) (*models.Lesson, error) {
	l, err := s.repo.GetLesson(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Authorize(action, policy.Object(policy.KindLesson, l.OwnerID), actor); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLesson возвращает урок.
func (s *Service) GetLesson(ctx context.Context, actor models.Actor, id int64) (*models.Lesson, error) {
	return s.lessonForAction(ctx, "services.course.GetLesson", policy.ActionRead, actor, id)
}

// UpdateLesson меняет урок и уведомляет подписчиков его курса.
func (s *Service) UpdateLesson(ctx context.Context, actor models.Actor, id int64, patch models.LessonPatch) (*models.Lesson, error) {
	const op = "services.course.UpdateLesson"

	old, err := s.lessonForAction(ctx, op, policy.ActionUpdate, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.VideoLink != nil && !videolink.Valid(*patch.VideoLink) {
		return nil, apperr.Validation(errVideoLink)
	}
	if patch.CourseID != nil && *patch.CourseID != old.CourseID {
		if err := s.ensureCourseExists(ctx, op, *patch.CourseID); err != nil {
			return nil, err
		}
	}

	l, err := s.repo.UpdateLesson(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.notify(ctx, l.CourseID)
	if l.CourseID != old.CourseID {
		s.invalidate(ctx, old.CourseID, l.CourseID)
	} else {
		s.invalidate(ctx, l.CourseID)
	}
	return l, nil
}

// DeleteLesson удаляет урок.
func (s *Service) DeleteLesson(ctx context.Context, actor models.Actor, id int64) error {
	const op = "services.course.DeleteLesson"

	l, err := s.lessonForAction(ctx, op, policy.ActionDelete, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lesson not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, l.CourseID)
	return nil
}
