// Package apperr описывает доменные ошибки сервиса и их отображение
// на HTTP-статусы. Ошибка создаётся в месте обнаружения, оборачивается
// контекстом операции через fmt.Errorf("%s: %w") и распознаётся на границе
// запроса через errors.As.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind: категория доменной ошибки.
type Kind int

const (
	// KindInternal: непредвиденная ошибка (хранилище, очередь и т.п.).
	KindInternal Kind = iota
	// KindValidation: некорректные или отсутствующие входные данные.
	KindValidation
	// KindNotFound: сущность не найдена или скрыта от текущего пользователя.
	KindNotFound
	// KindGateway: ошибка внешнего платёжного провайдера.
	KindGateway
	// KindPermission: недостаточно прав для действия.
	KindPermission
	// KindConflict: нарушение уникальности при конкурентной записи.
	KindConflict
	// KindUnauthenticated: нет или неверные учётные данные.
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindGateway:
		return "gateway"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error: доменная ошибка с категорией и сообщением для клиента.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation возвращает ошибку валидации входных данных.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound возвращает ошибку отсутствующей сущности.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Permission возвращает ошибку недостаточных прав.
func Permission(msg string) error {
	return &Error{Kind: KindPermission, Msg: msg}
}

// Unauthenticated возвращает ошибку аутентификации.
func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

// Conflict возвращает ошибку конфликта записи.
func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Msg: msg, Err: err}
}

// Gateway оборачивает ошибку платёжного провайдера.
func Gateway(msg string, err error) error {
	return &Error{Kind: KindGateway, Msg: msg, Err: err}
}

// KindOf возвращает категорию ошибки; для посторонних ошибок: KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is сообщает, относится ли ошибка к указанной категории.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus отображает ошибку на HTTP-статус ответа.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage возвращает сообщение, которое безопасно отдать клиенту.
// Детали ошибок провайдера и внутренних ошибок наружу не уходят.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	switch e.Kind {
	case KindGateway:
		return "payment provider error"
	case KindInternal:
		return "internal error"
	default:
		return e.Msg
	}
}
