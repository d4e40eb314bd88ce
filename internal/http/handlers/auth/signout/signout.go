// Package signout содержит обработчик выхода из сессии.
package signout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/jwt"
)

// Service отзывает сессионный токен.
type Service interface {
	SignOut(ctx context.Context, claims *jwt.CustomClaims) error
}

// Handler обрабатывает POST /api/sign-out.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик выхода.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает запрос на выход.
// @Summary Выход
// @Description Отзывает текущий токен и удаляет cookie сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия завершена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /sign-out [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.ClaimsFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrNotAuthenticated, "Not authenticated")
		return
	}

	if err := h.service.SignOut(r.Context(), claims); err != nil {
		response.Fail(w, r, log, err, "Error signing out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	render.JSON(w, r, response.OK("Signed out successfully"))
}
