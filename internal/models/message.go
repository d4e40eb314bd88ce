package models

import "time"

// Message представляет анонимное сообщение, принадлежащее пользователю.
type Message struct {
	ID        string    `db:"id" json:"_id"`
	UserID    string    `db:"user_id" json:"-"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// VerificationEmail описывает задание на отправку письма с кодом подтверждения.
// Публикуется в RabbitMQ при регистрации и читается сервисом sender.
type VerificationEmail struct {
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
