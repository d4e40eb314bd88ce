// Package models содержит доменные модели сервиса: пользователя,
// его сообщения и представления, которые отдаются наружу.
package models

import "time"

// User представляет зарегистрированного пользователя.
type User struct {
	ID                  string    `db:"id"`                    // Уникальный идентификатор (uuid)
	Username            string    `db:"username"`              // Имя пользователя, уникальное
	Email               string    `db:"email"`                 // Электронная почта, уникальная
	PasswordHash        string    `db:"password_hash"`         // bcrypt-хэш пароля
	VerifyCode          string    `db:"verify_code"`           // Код подтверждения из 6 цифр
	VerifyCodeExpiry    time.Time `db:"verify_code_expiry"`    // Момент истечения кода
	IsVerified          bool      `db:"is_verified"`           // Подтверждён ли e-mail
	IsAcceptingMessages bool      `db:"is_accepting_messages"` // Принимает ли пользователь новые сообщения
	CreatedAt           time.Time `db:"created_at"`
}

// CodeExpired сообщает, истёк ли код подтверждения к моменту now.
func (u *User) CodeExpired(now time.Time) bool {
	return now.After(u.VerifyCodeExpiry)
}

// Principal представляет аутентифицированного пользователя, привязанного к сессии.
type Principal struct {
	ID                  string `json:"_id"`
	Username            string `json:"username"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// PrincipalOf строит Principal из записи пользователя.
func PrincipalOf(u *User) Principal {
	return Principal{
		ID:                  u.ID,
		Username:            u.Username,
		IsVerified:          u.IsVerified,
		IsAcceptingMessages: u.IsAcceptingMessages,
	}
}

// PublicUser представляет пользователя без секретов.
type PublicUser struct {
	ID                  string    `json:"_id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	IsVerified          bool      `json:"isVerified"`
	IsAcceptingMessages bool      `json:"isAcceptingMessages"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Public возвращает представление пользователя без хэша пароля и кода.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                  u.ID,
		Username:            u.Username,
		Email:               u.Email,
		IsVerified:          u.IsVerified,
		IsAcceptingMessages: u.IsAcceptingMessages,
		CreatedAt:           u.CreatedAt,
	}
}

// Profile представляет публичный профиль, по которому принимаются анонимные сообщения.
type Profile struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}
