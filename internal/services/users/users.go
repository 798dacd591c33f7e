// Package users реализует просмотр и редактирование профилей пользователей.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/policy"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// PaymentHistorySize: сколько последних платежей попадает в профиль.
const PaymentHistorySize = 10

// Repository описывает контракт хранилища пользователей.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, page models.Page) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	ListPayments(ctx context.Context, f models.PaymentFilter, limit int) ([]*models.Payment, error)
}

// Service: сервис профилей.
type Service struct {
	repo Repository
}

// New создаёт сервис профилей.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) user(ctx context.Context, op string, id int64) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Service) detail(ctx context.Context, op string, u *models.User) (*models.UserDetail, error) {
	history, err := s.repo.ListPayments(ctx, models.PaymentFilter{UserID: &u.ID}, PaymentHistorySize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if history == nil {
		history = []*models.Payment{}
	}
	return &models.UserDetail{User: *u, PaymentHistory: history}, nil
}

// Me возвращает полный профиль текущего пользователя.
func (s *Service) Me(ctx context.Context, actor models.Actor) (*models.UserDetail, error) {
	const op = "services.users.Me"

	u, err := s.user(ctx, op, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, op, u)
}

// Get возвращает полный профиль владельцу и модератору, остальным публичный.
func (s *Service) Get(ctx context.Context, actor models.Actor, id int64) (any, error) {
	const op = "services.users.Get"

	if err := policy.Authorize(policy.ActionRead, policy.Object(policy.KindUser, &id), actor); err != nil {
		return nil, err
	}
	u, err := s.user(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanSeeUserDetail(id, actor) {
		return u.Public(), nil
	}
	return s.detail(ctx, op, u)
}

// List возвращает страницу публичных профилей.
func (s *Service) List(ctx context.Context, actor models.Actor, page models.Page) (models.PageResult[models.UserPublic], error) {
	const op = "services.users.List"

	if err := policy.Authorize(policy.ActionList, policy.Collection(policy.KindUser), actor); err != nil {
		return models.PageResult[models.UserPublic]{}, err
	}
	items, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return models.PageResult[models.UserPublic]{}, fmt.Errorf("%s: %w", op, err)
	}
	public := make([]models.UserPublic, 0, len(items))
	for _, u := range items {
		public = append(public, u.Public())
	}
	return models.NewPageResult(public, total, page), nil
}

// Update меняет профиль; разрешено самому пользователю и модератору.
func (s *Service) Update(ctx context.Context, actor models.Actor, id int64, upd models.UserUpdate) (*models.User, error) {
	const op = "services.users.Update"

	if err := policy.Authorize(policy.ActionUpdate, policy.Object(policy.KindUser, &id), actor); err != nil {
		return nil, err
	}
	u, err := s.repo.UpdateUser(ctx, id, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
