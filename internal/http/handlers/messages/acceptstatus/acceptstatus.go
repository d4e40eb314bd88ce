// Package acceptstatus содержит обработчик чтения флага приёма сообщений.
package acceptstatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mystery-message/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mystery-message/internal/http/response"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/models"
)

// Response содержит текущее значение флага.
type Response struct {
	response.Response
	IsAcceptingMessages bool `json:"isAcceptingMessages"`
}

// Service читает флаг приёма сообщений.
type Service interface {
	GetAccepting(ctx context.Context, principal models.Principal) (bool, error)
}

// Handler обрабатывает GET /api/accept-messages.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает флаг приёма сообщений текущего пользователя.
// @Summary Статус приёма сообщений
// @Tags Messages
// @Produce  json
// @Success 200 {object} Response "Текущий статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accept-messages [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.acceptstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrNotAuthenticated, "Not authenticated")
		return
	}

	accepting, err := h.service.GetAccepting(r.Context(), principal)
	if err != nil {
		response.Fail(w, r, log, err, "Error retrieving message acceptance status")
		return
	}

	render.JSON(w, r, Response{
		Response:            response.Response{Success: true},
		IsAcceptingMessages: accepting,
	})
}
