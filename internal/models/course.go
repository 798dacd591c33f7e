package models

import "time"

// Course: учебный курс. UpdatedAt служит отметкой последней рассылки
// подписчикам и меняется только уведомителем.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     *int64    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lesson: урок, принадлежащий ровно одному курсу.
type Lesson struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoLink   string    `json:"video_link"`
	CourseID    int64     `json:"course"`
	OwnerID     *int64    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseDetail: курс вместе с уроками и признаком подписки текущего пользователя.
type CourseDetail struct {
	Course
	LessonsCount int       `json:"lessons_count"`
	Lessons      []*Lesson `json:"lessons"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// CourseInput используется для создания и полного обновления курса.
type CourseInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// CoursePatch: частичное обновление курса.
type CoursePatch struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
}

// LessonInput используется для создания и полного обновления урока.
type LessonInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	VideoLink   string `json:"video_link" validate:"required,url"`
	CourseID    int64  `json:"course" validate:"required,gt=0"`
}

// LessonPatch: частичное обновление урока.
type LessonPatch struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	VideoLink   *string `json:"video_link" validate:"omitempty,url"`
	CourseID    *int64  `json:"course" validate:"omitempty,gt=0"`
}

const (
	DefaultPageSize = 5
	MaxPageSize     = 50
)

// Page описывает параметры постраничной выдачи.
type Page struct {
	Number int
	Size   int
}

// NewPage нормализует номер и размер страницы: номер не меньше 1,
// размер по умолчанию DefaultPageSize и не больше MaxPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset возвращает смещение для SQL-запроса.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult: страница результатов в формате ответа API.
type PageResult[T any] struct {
	Count    int  `json:"count"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	Results  []T  `json:"results"`
}

// NewPageResult собирает страницу результатов.
func NewPageResult[T any](items []T, total int, page Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Count:    total,
		Page:     page.Number,
		PageSize: page.Size,
		HasNext:  page.Offset()+len(items) < total,
		Results:  items,
	}
}
