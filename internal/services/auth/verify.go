package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
)

// VerifyCode подтверждает почту пользователя username кодом code.
//
// Истёкший код отклоняется независимо от совпадения, чтобы клиент мог
// предложить повторную регистрацию.
func (s *Service) VerifyCode(ctx context.Context, username, code string) error {
	const op = "services.auth.VerifyCode"
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error verifying user")
	}
	if user.CodeExpired(s.now()) {
		return apperr.ErrCodeExpired
	}
	if user.VerifyCode != code {
		return apperr.ErrInvalidCode
	}
	if err = s.users.MarkVerified(ctx, user.ID); err != nil {
		return apperr.Classify(fmt.Errorf("%s: %w", op, err), "Error verifying user")
	}
	s.log.Info("user verified", slog.String("op", op), slog.String("user_id", user.ID))
	return nil
}
