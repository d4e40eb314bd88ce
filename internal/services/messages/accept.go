package messages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mystery-message/internal/cache"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// SetAccepting сохраняет флаг приёма сообщений владельца и сбрасывает кеш его профиля.
func (s *Service) SetAccepting(ctx context.Context, principal models.Principal, accepting bool) (*models.User, error) {
	const op = "services.messages.SetAccepting"
	user, err := s.repo.SetAcceptingMessages(ctx, principal.ID, accepting)
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error updating message acceptance status")
	}
	if err = s.cache.Invalidate(ctx, cache.ProfileKey(user.Username)); err != nil {
		s.log.Warn("failed to invalidate profile cache", slog.String("op", op), sl.Err(err))
	}
	return user, nil
}

// GetAccepting возвращает текущий флаг приёма сообщений владельца.
func (s *Service) GetAccepting(ctx context.Context, principal models.Principal) (bool, error) {
	const op = "services.messages.GetAccepting"
	user, err := s.repo.GetUserByID(ctx, principal.ID)
	if err != nil {
		return false, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error retrieving message acceptance status")
	}
	return user.IsAcceptingMessages, nil
}

// Profile возвращает публичный профиль пользователя username.
// Профиль читается из кеша, при промахе загружается из хранилища.
// В кеш попадают только подтверждённые пользователи: неподтверждённую запись
// повторная регистрация может переименовать, а очистка удалить.
func (s *Service) Profile(ctx context.Context, username string) (*models.Profile, error) {
	const op = "services.messages.Profile"
	log := s.log.With(slog.String("op", op))
	key := cache.ProfileKey(username)

	var cached models.Profile
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("failed to read profile cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error fetching user")
	}
	profile := &models.Profile{
		ID:                  user.ID,
		Username:            user.Username,
		IsAcceptingMessages: user.IsAcceptingMessages,
	}
	if !user.IsVerified {
		return profile, nil
	}
	if err = s.cache.Set(ctx, key, profile, s.profileTTL); err != nil {
		log.Warn("failed to cache profile", sl.Err(err))
	}
	return profile, nil
}

// CanAccept сообщает, принимает ли пользователь username сообщения.
// Ответ может опираться на кеш; при отправке решающей является проверка
// внутри транзакции хранилища.
func (s *Service) CanAccept(ctx context.Context, username string) (bool, error) {
	profile, err := s.Profile(ctx, username)
	if err != nil {
		return false, err
	}
	return profile.IsAcceptingMessages, nil
}
