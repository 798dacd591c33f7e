package models

import "time"

// Subscription: подписка пользователя на курс. Пара (UserID, CourseID) уникальна.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	CourseID  int64     `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleAction: результат переключения подписки.
type ToggleAction string

const (
	SubscriptionAdded   ToggleAction = "added"
	SubscriptionRemoved ToggleAction = "removed"
)

// ToggleRequest: запрос на подписку или отписку от курса.
type ToggleRequest struct {
	CourseID *int64 `json:"course_id"`
}

// CourseUpdatedMessage: задача на отправку письма об обновлении курса.
type CourseUpdatedMessage struct {
	CourseTitle string `json:"course_title"`
	Email       string `json:"email"`
}
