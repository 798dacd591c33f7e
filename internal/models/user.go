// Package models содержит доменные структуры платформы: пользователей,
// курсы, уроки, подписки и платежи, а также DTO для приёма JSON-запросов.
package models

import "time"

// User представляет зарегистрированного пользователя платформы.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	City         string     `json:"city,omitempty"`
	IsModerator  bool       `json:"-"`
	IsActive     bool       `json:"-"`
	LastLogin    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
}

// UserPublic: публичное представление пользователя для остальных пользователей.
type UserPublic struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
}

// UserDetail: полное представление пользователя для владельца и модераторов.
type UserDetail struct {
	User
	PaymentHistory []*Payment `json:"payment_history"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		Phone:     u.Phone,
		City:      u.City,
	}
}

// RegisterRequest используется для приёма данных регистрации.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=5"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"omitempty,max=15"`
	City      string `json:"city" validate:"omitempty,max=100"`
}

// LoginRequest используется для получения пары токенов.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest используется для обновления access-токена.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// UserUpdate: частичное обновление профиля; nil-поля не меняются.
type UserUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone" validate:"omitempty,max=15"`
	City      *string `json:"city" validate:"omitempty,max=100"`
}

// TokenPair: результат успешной аутентификации.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
