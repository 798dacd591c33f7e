package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/lms-platform/internal/models"
)

const lessonColumns = `id, title, description, video_link, course_id, owner_id, created_at, updated_at`

func scanLesson(row rowScanner) (*models.Lesson, error) {
	l := &models.Lesson{}
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.VideoLink, &l.CourseID,
		&l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CreateLesson сохраняет урок. Несуществующий курс возвращает ErrNotFound.
func (s *Storage) CreateLesson(ctx context.Context, in models.LessonInput, ownerID int64) (*models.Lesson, error) {
	const op = "storage.CreateLesson"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO lessons (title, description, video_link, course_id, owner_id)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + lessonColumns
	l, err := scanLesson(s.DB.QueryRowContext(ctx, query,
		in.Title, in.Description, in.VideoLink, in.CourseID, ownerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return l, nil
}

// GetLesson возвращает урок по ID.
func (s *Storage) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	const op = "storage.GetLesson"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	l, err := scanLesson(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return l, nil
}

// ListLessons возвращает страницу уроков и их общее число.
func (s *Storage) ListLessons(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Lesson, int, error) {
	const op = "storage.ListLessons"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM lessons WHERE ($1::BIGINT IS NULL OR owner_id = $1)`
	if err := s.DB.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons
			  WHERE ($1::BIGINT IS NULL OR owner_id = $1)
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res, err := collectLessons(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// ListCourseLessons возвращает все уроки курса.
func (s *Storage) ListCourseLessons(ctx context.Context, courseID int64) ([]*models.Lesson, error) {
	const op = "storage.ListCourseLessons"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE course_id = $1 ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res, err := collectLessons(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

type rowsIterator interface {
	rowScanner
	Next() bool
	Err() error
}

func collectLessons(rows rowsIterator) ([]*models.Lesson, error) {
	var res []*models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// UpdateLesson применяет частичное обновление урока.
func (s *Storage) UpdateLesson(ctx context.Context, id int64, patch models.LessonPatch) (*models.Lesson, error) {
	const op = "storage.UpdateLesson"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE lessons SET
				title       = COALESCE($2, title),
				description = COALESCE($3, description),
				video_link  = COALESCE($4, video_link),
				course_id   = COALESCE($5, course_id),
				updated_at  = NOW()
			  WHERE id = $1
			  RETURNING ` + lessonColumns
	l, err := scanLesson(s.DB.QueryRowContext(ctx, query,
		id, patch.Title, patch.Description, patch.VideoLink, patch.CourseID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return l, nil
}

// DeleteLesson удаляет урок.
func (s *Storage) DeleteLesson(ctx context.Context, id int64) error {
	const op = "storage.DeleteLesson"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
