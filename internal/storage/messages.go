package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// AddMessage добавляет сообщение пользователю username.
//
// Проверка флага приёма и вставка выполняются в одной транзакции под блокировкой
// строки пользователя, поэтому сообщение не попадёт к пользователю, который
// успел закрыть приём, а порядок вставки совпадает с порядком выдачи.
func (s *Storage) AddMessage(ctx context.Context, username string, msg models.Message) (*models.Message, error) {
	const op = "storage.AddMessage"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner struct {
		ID        string `db:"id"`
		Accepting bool   `db:"is_accepting_messages"`
	}
	err = tx.GetContext(ctx, &owner,
		`SELECT id, is_accepting_messages FROM users WHERE username = $1 FOR UPDATE`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !owner.Accepting {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrMessagesClosed)
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	var created models.Message
	err = tx.GetContext(ctx, &created,
		`INSERT INTO messages (id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, content, created_at`,
		msg.ID, owner.ID, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// ListMessages возвращает все сообщения пользователя в порядке добавления.
func (s *Storage) ListMessages(ctx context.Context, userID string) ([]models.Message, error) {
	const op = "storage.ListMessages"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0)
	err := s.DB.SelectContext(ctx, &messages,
		`SELECT id, user_id, content, created_at FROM messages
		 WHERE user_id = $1
		 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return messages, nil
}

// DeleteMessage удаляет сообщение messageID пользователя userID.
func (s *Storage) DeleteMessage(ctx context.Context, userID, messageID string) error {
	const op = "storage.DeleteMessage"
	if _, err := uuid.Parse(messageID); err != nil {
		return fmt.Errorf("%s: %w", op, apperr.ErrMessageNotFound)
	}
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM messages WHERE id = $1 AND user_id = $2`, messageID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrMessageNotFound)
	}
	return nil
}
