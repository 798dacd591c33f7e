package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/lms-platform/internal/models"
)

const paymentColumns = `id, user_id, payment_date, course_id, lesson_id, amount, payment_method,
	gateway_product_id, gateway_price_id, gateway_session_id, gateway_status, gateway_payment_url`

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.UserID, &p.PaymentDate, &p.CourseID, &p.LessonID, &p.Amount, &p.Method,
		&p.GatewayProductID, &p.GatewayPriceID, &p.GatewaySessionID, &p.GatewayStatus, &p.GatewayPaymentURL)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertPayment(ctx context.Context, q execQuerier, p *models.Payment) (int64, error) {
	// после удаления цели обе ссылки обнуляются, поэтому правило проверяется только при вставке
	if (p.CourseID == nil) == (p.LessonID == nil) {
		return 0, ErrInvalidTarget
	}
	status := p.GatewayStatus
	if status == "" {
		status = models.PaymentStatusPending
	}
	var id int64
	query := `INSERT INTO payments (user_id, course_id, lesson_id, amount, payment_method,
				gateway_product_id, gateway_price_id, gateway_session_id, gateway_status, gateway_payment_url)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	err := q.QueryRowContext(ctx, query, p.UserID, p.CourseID, p.LessonID, p.Amount, p.Method,
		p.GatewayProductID, p.GatewayPriceID, p.GatewaySessionID, status, p.GatewayPaymentURL).Scan(&id)
	if err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// CreatePayment сохраняет платёж и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, p *models.Payment) (int64, error) {
	const op = "storage.CreatePayment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	id, err := insertPayment(ctx, s.DB, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetPayment возвращает платёж по ID.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	const op = "storage.GetPayment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}

// UpdatePaymentStatus перезаписывает только статус платежа у провайдера.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	const op = "storage.UpdatePaymentStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE payments SET gateway_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPayments возвращает платежи по фильтру, по умолчанию от новых к старым.
// limit <= 0 означает выборку без ограничения.
func (s *Storage) ListPayments(ctx context.Context, f models.PaymentFilter, limit int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.CourseID != nil {
		add("course_id = $%d", *f.CourseID)
	}
	if f.LessonID != nil {
		add("lesson_id = $%d", *f.LessonID)
	}
	if f.Method != nil {
		add("payment_method = $%d", string(*f.Method))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + paymentColumns + ` FROM payments`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.Ascending {
		b.WriteString(" ORDER BY payment_date ASC, id ASC")
	} else {
		b.WriteString(" ORDER BY payment_date DESC, id DESC")
	}
	if limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(limit))
	}

	rows, err := s.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
