// Package request содержит разбор параметров HTTP-запросов.
package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/lms-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// ErrInvalidBody возвращается, если тело запроса не является корректным JSON.
var ErrInvalidBody = errors.New("invalid request body")

// IDParam читает положительный целочисленный параметр пути.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// OptionalInt64 читает необязательный целочисленный query-параметр.
func OptionalInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &v, nil
}

// Page читает параметры постраничной выдачи page и page_size.
func Page(r *http.Request) (models.Page, error) {
	q := r.URL.Query()
	number, size := 1, 0
	var err error
	if raw := q.Get("page"); raw != "" {
		if number, err = strconv.Atoi(raw); err != nil || number < 1 {
			return models.Page{}, apperr.Validation("invalid page")
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size < 1 {
			return models.Page{}, apperr.Validation("invalid page_size")
		}
	}
	return models.NewPage(number, size), nil
}

// Decode читает JSON-тело запроса в v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrInvalidBody
	}
	return nil
}

// Actor возвращает пользователя запроса, установленного JWTMiddleware.
func Actor(r *http.Request) (models.Actor, error) {
	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		return models.Actor{}, apperr.Unauthenticated("authentication credentials were not provided")
	}
	return actor, nil
}
