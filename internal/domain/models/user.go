package models

// User представляет зарегистрированного пользователя магазина
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"` // уникальное имя, после регистрации не меняется
	PassHash []byte `json:"-"`        // хэш пароля, наружу не отдаём
}
