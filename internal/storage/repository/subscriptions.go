package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// GetSubscription возвращает подписку пользователя на курс.
func (s *Storage) GetSubscription(ctx context.Context, userID, courseID int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, course_id, created_at
			  FROM course_subscriptions
			  WHERE user_id = $1 AND course_id = $2`
	sub := &models.Subscription{}
	err := s.DB.QueryRowContext(ctx, query, userID, courseID).
		Scan(&sub.ID, &sub.UserID, &sub.CourseID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return sub, nil
}

// CreateSubscription создаёт подписку. Повтор пары (user, course) возвращает ErrConflict.
func (s *Storage) CreateSubscription(ctx context.Context, userID, courseID int64) (int64, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	query := `INSERT INTO course_subscriptions (user_id, course_id) VALUES ($1, $2) RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, userID, courseID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, translate(err))
	}
	return id, nil
}

// DeleteSubscription удаляет подписку по ID.
func (s *Storage) DeleteSubscription(ctx context.Context, id int64) error {
	const op = "storage.DeleteSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM course_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsSubscribed сообщает, подписан ли пользователь на курс.
func (s *Storage) IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.IsSubscribed"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM course_subscriptions WHERE user_id = $1 AND course_id = $2)`
	if err := s.DB.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListSubscriberEmails возвращает email подписчика для каждой подписки на курс.
func (s *Storage) ListSubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	const op = "storage.ListSubscriberEmails"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.email
			  FROM course_subscriptions cs
			  JOIN users u ON u.id = cs.user_id
			  WHERE cs.course_id = $1
			  ORDER BY cs.id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return emails, nil
}
