// Package policy решает, может ли пользователь выполнить действие над ресурсом.
//
// Матрица прав:
//
//	курс/урок: list: все (область видимости через Scope), create: не модераторы,
//	           read/update: модератор или владелец, delete: только владелец-не-модератор;
//	платёж:    list: все (Scope), create: все, read: модератор или владелец;
//	профиль:   read: все, update: сам пользователь или модератор.
//
// Объекты, которых пользователь не видит, отвечают NotFound, а не Permission.
package policy

import (
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

// Action: действие над ресурсом.
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind: тип ресурса.
type Kind string

const (
	KindCourse  Kind = "course"
	KindLesson  Kind = "lesson"
	KindPayment Kind = "payment"
	KindUser    Kind = "user"
)

// Resource: ресурс, над которым выполняется действие.
// OwnerID пуст для коллекций и для объектов без владельца.
type Resource struct {
	Kind    Kind
	OwnerID *int64
}

// Collection возвращает ресурс-коллекцию заданного типа.
func Collection(kind Kind) Resource {
	return Resource{Kind: kind}
}

// Object возвращает ресурс-объект с владельцем.
func Object(kind Kind, ownerID *int64) Resource {
	return Resource{Kind: kind, OwnerID: ownerID}
}

// Authorize возвращает nil, если actor может выполнить action над res.
func Authorize(action Action, res Resource, actor models.Actor) error {
	switch res.Kind {
	case KindCourse, KindLesson:
		return authorizeMaterial(action, res, actor)
	case KindPayment:
		return authorizePayment(action, res, actor)
	case KindUser:
		return authorizeUser(action, res, actor)
	}
	return apperr.Permission("unknown resource")
}

// Scope возвращает владельца, которым ограничивается выборка коллекции,
// либо nil, если actor видит всё.
func Scope(actor models.Actor) *int64 {
	if actor.IsModerator {
		return nil
	}
	id := actor.UserID
	return &id
}

func isOwner(res Resource, actor models.Actor) bool {
	return res.OwnerID != nil && *res.OwnerID == actor.UserID
}

func authorizeMaterial(action Action, res Resource, actor models.Actor) error {
	switch action {
	case ActionList:
		return nil
	case ActionCreate:
		if actor.IsModerator {
			return apperr.Permission("moderators cannot create " + string(res.Kind) + "s")
		}
		return nil
	case ActionRead, ActionUpdate:
		if actor.IsModerator || isOwner(res, actor) {
			return nil
		}
		return apperr.NotFound(string(res.Kind) + " not found")
	case ActionDelete:
		if actor.IsModerator {
			return apperr.Permission("moderators cannot delete " + string(res.Kind) + "s")
		}
		if isOwner(res, actor) {
			return nil
		}
		return apperr.NotFound(string(res.Kind) + " not found")
	}
	return apperr.Permission("action not allowed")
}

func authorizePayment(action Action, res Resource, actor models.Actor) error {
	switch action {
	case ActionList, ActionCreate:
		return nil
	case ActionRead, ActionUpdate:
		if actor.IsModerator || isOwner(res, actor) {
			return nil
		}
		return apperr.NotFound("payment not found")
	}
	return apperr.Permission("action not allowed")
}

func authorizeUser(action Action, res Resource, actor models.Actor) error {
	switch action {
	case ActionList, ActionRead:
		return nil
	case ActionUpdate:
		if actor.IsModerator || isOwner(res, actor) {
			return nil
		}
		return apperr.Permission("only the profile owner or a moderator can edit it")
	}
	return apperr.Permission("action not allowed")
}

// CanSeeUserDetail сообщает, положена ли actor полная карточка пользователя.
func CanSeeUserDetail(userID int64, actor models.Actor) bool {
	return actor.IsModerator || actor.UserID == userID
}
