// Package messages содержит бизнес-логику анонимных сообщений:
// флаг приёма, добавление, просмотр и удаление сообщений владельцем.
package messages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// MaxContentLength задаёт максимальную длину сообщения в символах.
const MaxContentLength = 1000

// Repository описывает контракт хранилища пользователей и сообщений.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetAcceptingMessages(ctx context.Context, id string, accepting bool) (*models.User, error)
	AddMessage(ctx context.Context, username string, msg models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, userID string) ([]models.Message, error)
	DeleteMessage(ctx context.Context, userID, messageID string) error
}

// Cache кеширует публичные профили.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции над сообщениями и флагом приёма.
type Service struct {
	repo       Repository
	cache      Cache
	profileTTL time.Duration
	log        *slog.Logger
	now        func() time.Time
	newID      func() string
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, profileTTL time.Duration, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		cache:      cache,
		profileTTL: profileTTL,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append анонимно добавляет сообщение пользователю username.
// Флаг приёма сообщений проверяется в той же транзакции, что и вставка
// (AddMessage блокирует строку пользователя), поэтому кеш профиля здесь не читается.
func (s *Service) Append(ctx context.Context, username, content string) (*models.Message, error) {
	const op = "services.messages.Append"
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.New(apperr.KindValidation, "Message content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, apperr.New(apperr.KindValidation,
			fmt.Sprintf("Message content must be at most %d characters", MaxContentLength))
	}

	msg, err := s.repo.AddMessage(ctx, username, models.Message{
		ID:        s.newID(),
		Content:   content,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error sending message")
	}
	s.log.Debug("message appended", slog.String("op", op), slog.String("message_id", msg.ID))
	return msg, nil
}

// List возвращает все сообщения владельца в порядке поступления.
func (s *Service) List(ctx context.Context, principal models.Principal) ([]models.Message, error) {
	const op = "services.messages.List"
	user, err := s.repo.GetUserByID(ctx, principal.ID)
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error fetching messages")
	}
	messages, err := s.repo.ListMessages(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("Error fetching messages", fmt.Errorf("%s: %w", op, err))
	}
	return messages, nil
}

// Delete удаляет сообщение владельца по идентификатору.
func (s *Service) Delete(ctx context.Context, principal models.Principal, messageID string) error {
	const op = "services.messages.Delete"
	if err := s.repo.DeleteMessage(ctx, principal.ID, messageID); err != nil {
		return apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error deleting message")
	}
	s.log.Info("message deleted", slog.String("op", op), slog.String("message_id", messageID))
	return nil
}
