// Package auth содержит бизнес-логику регистрации, подтверждения почты
// и сессий пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mystery-message/internal/cache"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/jwt"
	"github.com/magabrotheeeer/mystery-message/internal/lib/password"
	"github.com/magabrotheeeer/mystery-message/internal/lib/verifycode"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateUnverifiedUser(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) (*models.User, error)
	DeleteUnverifiedUser(ctx context.Context, id string) (int, error)
	MarkVerified(ctx context.Context, id string) error
}

// EmailQueue публикует задания на отправку писем.
type EmailQueue interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// TokenStore хранит отозванные токены.
type TokenStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Service отвечает за регистрацию, подтверждение, вход и выход.
type Service struct {
	users        UserRepository
	jwtMaker     jwt.Maker
	queue        EmailQueue
	tokens       TokenStore
	codeTTL      time.Duration
	log          *slog.Logger
	now          func() time.Time
	generateCode func() (string, error)
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator подменяет генератор кодов подтверждения.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.generateCode = gen }
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker, queue EmailQueue, tokens TokenStore,
	codeTTL time.Duration, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:        users,
		jwtMaker:     jwtMaker,
		queue:        queue,
		tokens:       tokens,
		codeTTL:      codeTTL,
		log:          log,
		now:          time.Now,
		generateCode: verifycode.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn проверяет учётные данные и выдаёт сессионный токен.
//
// identifier может быть именем пользователя или почтой. Ошибки проверяются по порядку:
// пользователь не найден, почта не подтверждена, неверный пароль.
func (s *Service) SignIn(ctx context.Context, identifier, rawPassword string) (models.Principal, string, error) {
	const op = "services.auth.SignIn"
	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return models.Principal{}, "", apperr.ErrNoAccount
		}
		return models.Principal{}, "", apperr.Internal("Error signing in", fmt.Errorf("%s: %w", op, err))
	}
	if !user.IsVerified {
		return models.Principal{}, "", apperr.ErrNotVerified
	}
	ok, err := password.Matches(user.PasswordHash, rawPassword)
	if err != nil {
		return models.Principal{}, "", apperr.Internal("Error signing in", fmt.Errorf("%s: %w", op, err))
	}
	if !ok {
		return models.Principal{}, "", apperr.ErrIncorrectPassword
	}

	principal := models.PrincipalOf(user)
	token, err := s.jwtMaker.GenerateToken(principal)
	if err != nil {
		return models.Principal{}, "", apperr.Internal("Error signing in", fmt.Errorf("%s: %w", op, err))
	}
	return principal, token, nil
}

// ValidateToken проверяет JWT и убеждается, что он не отозван.
func (s *Service) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, apperr.ErrInvalidToken.Message, err)
	}
	revoked, err := s.tokens.Exists(ctx, cache.RevokedTokenKey(claims.ID))
	if err != nil {
		return nil, apperr.Internal("Error validating session", fmt.Errorf("%s: %w", op, err))
	}
	if revoked {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}

// SignOut отзывает токен до истечения его собственного срока действия.
func (s *Service) SignOut(ctx context.Context, claims *jwt.CustomClaims) error {
	const op = "services.auth.SignOut"
	ttl := claims.Remaining(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Set(ctx, cache.RevokedTokenKey(claims.ID), true, ttl); err != nil {
		return apperr.Internal("Error signing out", fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("session revoked", slog.String("op", op), slog.String("user_id", claims.UserID))
	return nil
}
