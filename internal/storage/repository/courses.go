package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/lms-platform/internal/models"
)

const courseColumns = `id, title, description, owner_id, created_at, updated_at`

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{}
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCourse сохраняет курс и возвращает его с присвоенным ID.
func (s *Storage) CreateCourse(ctx context.Context, in models.CourseInput, ownerID int64) (*models.Course, error) {
	const op = "storage.CreateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO courses (title, description, owner_id)
			  VALUES ($1, $2, $3)
			  RETURNING ` + courseColumns
	c, err := scanCourse(s.DB.QueryRowContext(ctx, query, in.Title, in.Description, ownerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return c, nil
}

// GetCourse возвращает курс по ID.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.GetCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return c, nil
}

// ListCourses возвращает страницу курсов и их общее число.
// Если ownerID задан, выборка ограничивается курсами владельца.
func (s *Storage) ListCourses(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Course, int, error) {
	const op = "storage.ListCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM courses WHERE ($1::BIGINT IS NULL OR owner_id = $1)`
	if err := s.DB.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + courseColumns + ` FROM courses
			  WHERE ($1::BIGINT IS NULL OR owner_id = $1)
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// UpdateCourse меняет заголовок и описание курса. updated_at не трогается:
// это отметка последней рассылки, её пишет только SetCourseUpdatedAt.
func (s *Storage) UpdateCourse(ctx context.Context, id int64, patch models.CoursePatch) (*models.Course, error) {
	const op = "storage.UpdateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE courses SET
				title       = COALESCE($2, title),
				description = COALESCE($3, description)
			  WHERE id = $1
			  RETURNING ` + courseColumns
	c, err := scanCourse(s.DB.QueryRowContext(ctx, query, id, patch.Title, patch.Description))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return c, nil
}

// SetCourseUpdatedAt записывает отметку последней рассылки, не меняя других полей.
func (s *Storage) SetCourseUpdatedAt(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.SetCourseUpdatedAt"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE courses SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteCourse удаляет курс вместе с уроками и подписками.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.DeleteCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
