package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/lms-platform/internal/models"
)

const intentColumns = `key, user_id, product_type, product_id, amount, state,
	product_ref, price_ref, session_id, session_url, payment_id, created_at, updated_at`

func scanIntent(row rowScanner) (*models.PaymentIntent, error) {
	in := &models.PaymentIntent{}
	err := row.Scan(&in.Key, &in.UserID, &in.ProductType, &in.ProductID, &in.Amount, &in.State,
		&in.ProductRef, &in.PriceRef, &in.SessionID, &in.SessionURL, &in.PaymentID,
		&in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// CreateIntent записывает намерение оплаты в состоянии created.
func (s *Storage) CreateIntent(ctx context.Context, in *models.PaymentIntent) error {
	const op = "storage.CreateIntent"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO payment_intents (key, user_id, product_type, product_id, amount, state)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		in.Key, in.UserID, in.ProductType, in.ProductID, in.Amount, models.IntentCreated)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return nil
}

// GetIntent возвращает намерение оплаты по ключу.
func (s *Storage) GetIntent(ctx context.Context, key string) (*models.PaymentIntent, error) {
	const op = "storage.GetIntent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE key = $1`
	in, err := scanIntent(s.DB.QueryRowContext(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return in, nil
}

// MarkIntentSessionCreated сохраняет идентификаторы провайдера после создания сессии.
func (s *Storage) MarkIntentSessionCreated(ctx context.Context, key, productRef, priceRef, sessionID, sessionURL string) error {
	const op = "storage.MarkIntentSessionCreated"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE payment_intents
			  SET state = $2, product_ref = $3, price_ref = $4, session_id = $5, session_url = $6, updated_at = NOW()
			  WHERE key = $1 AND state = $7`
	res, err := s.DB.ExecContext(ctx, query, key, models.IntentSessionCreated,
		productRef, priceRef, sessionID, sessionURL, models.IntentCreated)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return nil
}

// FailIntent переводит намерение в failed, если оно ещё не завершено.
func (s *Storage) FailIntent(ctx context.Context, key string) error {
	const op = "storage.FailIntent"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE payment_intents SET state = $2, updated_at = NOW()
			  WHERE key = $1 AND state IN ($3, $4)`
	_, err := s.DB.ExecContext(ctx, query, key, models.IntentFailed,
		models.IntentCreated, models.IntentSessionCreated)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CompleteIntent в одной транзакции создаёт платёж и переводит намерение
// из session_created в completed. Если намерение уже завершено другим
// процессом, возвращает ErrConflict и ничего не пишет.
func (s *Storage) CompleteIntent(ctx context.Context, key string, p *models.Payment) (id int64, err error) {
	const op = "storage.CompleteIntent"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var state models.IntentState
	err = tx.QueryRowContext(ctx, `SELECT state FROM payment_intents WHERE key = $1 FOR UPDATE`, key).Scan(&state)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translate(err))
	}
	if state != models.IntentSessionCreated {
		err = ErrConflict
		return 0, fmt.Errorf("%s: intent in state %s: %w", op, state, err)
	}

	id, err = insertPayment(ctx, tx, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE payment_intents SET state = $2, payment_id = $3, updated_at = NOW() WHERE key = $1`,
		key, models.IntentCompleted, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListStaleIntents возвращает намерения в состоянии state, не менявшиеся с момента before.
func (s *Storage) ListStaleIntents(ctx context.Context, state models.IntentState, before time.Time, limit int) ([]*models.PaymentIntent, error) {
	const op = "storage.ListStaleIntents"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + intentColumns + ` FROM payment_intents
			  WHERE state = $1 AND updated_at < $2
			  ORDER BY updated_at
			  LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, query, state, before, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.PaymentIntent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// AbandonIntents переводит в abandoned намерения, застрявшие в created с момента before.
func (s *Storage) AbandonIntents(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.AbandonIntents"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE payment_intents SET state = $1, updated_at = NOW()
			  WHERE state = $2 AND updated_at < $3`
	res, err := s.DB.ExecContext(ctx, query, models.IntentAbandoned, models.IntentCreated, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
