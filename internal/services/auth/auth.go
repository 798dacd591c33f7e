// Package services содержит логику регистрации, входа и проверки токенов пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-platform/internal/lib/password"
	"github.com/magabrotheeeer/lms-platform/internal/lib/sl"
	"github.com/magabrotheeeer/lms-platform/internal/models"
	"github.com/magabrotheeeer/lms-platform/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user *models.User) (int64, error)

	// GetUserByEmail возвращает пользователя по email или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по ID или ErrNotFound.
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// TouchLastLogin записывает время последнего входа.
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// AuthService отвечает за регистрацию, выдачу токенов и аутентификацию запросов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

var errInvalidCredentials = apperr.Unauthenticated("no active account found with the given credentials")

// Register создает активного пользователя с хэшированием пароля.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		City:         req.City,
		IsActive:     true,
	}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Validation("user with this email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id
	s.log.Info("user registered", slog.String("op", op), slog.Int64("user_id", id))
	return user, nil
}

// Login проверяет пароль пользователя и выдаёт пару токенов.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	const op = "services.auth.Login"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, errInvalidCredentials
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		log.Error("failed to record last login", slog.Int64("user_id", user.ID), sl.Err(err))
	}
	return pair, nil
}

// Refresh выдаёт новую пару токенов по действующему refresh-токену.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPair, error) {
	const op = "services.auth.Refresh"

	claims, err := s.jwtMaker.ParseRefreshToken(req.Refresh)
	if err != nil {
		return nil, apperr.Unauthenticated("token is invalid or expired")
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	pair, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Authenticate проверяет access-токен и возвращает пользователя запроса.
// Признак модератора берётся из базы, а не из токена.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (models.Actor, error) {
	claims, err := s.jwtMaker.ParseAccessToken(accessToken)
	if err != nil {
		return models.Actor{}, apperr.Unauthenticated("token is invalid or expired")
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: user.ID, Email: user.Email, IsModerator: user.IsModerator}, nil
}

func (s *AuthService) activeUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.auth.activeUser"

	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthenticated("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("user is inactive")
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*models.TokenPair, error) {
	access, refresh, err := s.jwtMaker.GenerateTokenPair(jwt.Subject{
		UserID:      user.ID,
		Email:       user.Email,
		IsModerator: user.IsModerator,
	})
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}
