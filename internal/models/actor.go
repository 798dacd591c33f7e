package models

// Actor: аутентифицированный пользователь текущего запроса.
// Признак модератора вычисляется один раз при аутентификации
// и дальше передаётся явно.
type Actor struct {
	UserID      int64
	Email       string
	IsModerator bool
}
