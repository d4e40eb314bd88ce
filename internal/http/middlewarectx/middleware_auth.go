// Package middlewarectx содержит HTTP middleware сервиса.
//
// JWTMiddleware достаёт сессионный токен из заголовка Authorization или из
// cookie session_token, проверяет его и кладёт claims в контекст запроса.
// Обработчики читают аутентифицированного пользователя через PrincipalFrom.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/jwt"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// SessionCookie задаёт имя cookie с сессионным токеном.
const SessionCookie = "session_token"

// Key тип для ключей контекста HTTP-запроса.
type Key string

// Claims используется как ключ claims сессии в контексте.
const Claims Key = "claims"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который пропускает только запросы
// с действующим сессионным токеном.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				response.Fail(w, r, log, apperr.ErrNotAuthenticated, "Not authenticated")
				return
			}

			claims, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				response.Fail(w, r, log, err, "Error validating session")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithClaims кладёт claims сессии в контекст.
func WithClaims(ctx context.Context, claims *jwt.CustomClaims) context.Context {
	return context.WithValue(ctx, Claims, claims)
}

// ClaimsFrom достаёт claims сессии из контекста.
func ClaimsFrom(ctx context.Context) (*jwt.CustomClaims, bool) {
	claims, ok := ctx.Value(Claims).(*jwt.CustomClaims)
	return claims, ok && claims != nil
}

// PrincipalFrom возвращает аутентифицированного пользователя запроса.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return models.Principal{}, false
	}
	return claims.Principal(), true
}
