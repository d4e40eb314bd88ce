package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/password"
	"github.com/magabrotheeeer/mystery-message/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// SignUp регистрирует пользователя или перевыпускает код для неподтверждённой записи
// с той же почтой, после чего ставит в очередь письмо с кодом.
//
// Если письмо не удалось поставить в очередь, запись остаётся, а повторная
// регистрация с той же почтой выпустит новый код.
func (s *Service) SignUp(ctx context.Context, username, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.SignUp"
	log := s.log.With(slog.String("op", op), slog.String("username", username))

	if err := s.claimUsername(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, apperr.Wrap(apperr.KindValidation, "Password must be at most 72 characters", err)
		}
		return nil, apperr.Internal("Error registering user", fmt.Errorf("%s: %w", op, err))
	}
	code, err := s.generateCode()
	if err != nil {
		return nil, apperr.Internal("Error registering user", fmt.Errorf("%s: %w", op, err))
	}
	expiry := s.now().Add(s.codeTTL)

	var user *models.User
	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return nil, apperr.ErrEmailTaken
	case err == nil:
		user, err = s.users.UpdateUnverifiedUser(ctx, existing.ID, username, hash, code, expiry)
		if err != nil {
			return nil, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error registering user")
		}
		log.Info("verification code reissued", slog.String("user_id", user.ID))
	case errors.Is(err, apperr.ErrUserNotFound):
		user, err = s.users.CreateUser(ctx, models.User{
			Username:         username,
			Email:            email,
			PasswordHash:     hash,
			VerifyCode:       code,
			VerifyCodeExpiry: expiry,
		})
		if err != nil {
			return nil, apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error registering user")
		}
		log.Info("user registered", slog.String("user_id", user.ID))
	default:
		return nil, apperr.Internal("Error registering user", fmt.Errorf("%s: %w", op, err))
	}

	job := models.VerificationEmail{
		Email:     user.Email,
		Username:  user.Username,
		Code:      user.VerifyCode,
		ExpiresAt: user.VerifyCodeExpiry,
	}
	if err = s.queue.Publish(ctx, rabbitmq.VerificationRoutingKey, job); err != nil {
		log.Error("failed to queue verification email", sl.Err(err))
		return nil, apperr.Internal("Error sending verification email", fmt.Errorf("%s: %w", op, err))
	}
	return user, nil
}

// IsUsernameUnique сообщает, может ли username быть занят новой регистрацией.
func (s *Service) IsUsernameUnique(ctx context.Context, username string) error {
	const op = "services.auth.IsUsernameUnique"
	holder, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal("Error checking username", fmt.Errorf("%s: %w", op, err))
	}
	if holder.IsVerified || !holder.CodeExpired(s.now()) {
		return apperr.ErrUsernameTaken
	}
	return nil
}

// claimUsername проверяет, что username свободен для регистрации с почтой email.
//
// Имя, занятое неподтверждённой записью с другой почтой, освобождается только
// после истечения её кода; устаревшая запись при этом удаляется.
func (s *Service) claimUsername(ctx context.Context, username, email string) error {
	const op = "services.auth.claimUsername"
	holder, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal("Error registering user", fmt.Errorf("%s: %w", op, err))
	}
	switch {
	case holder.IsVerified:
		return apperr.ErrUsernameTaken
	case holder.Email == email:
		return nil
	case !holder.CodeExpired(s.now()):
		return apperr.ErrUsernameTaken
	}
	if _, err = s.users.DeleteUnverifiedUser(ctx, holder.ID); err != nil {
		return apperr.Internal("Error registering user", fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("stale unverified user removed", slog.String("op", op), slog.String("user_id", holder.ID))
	return nil
}
